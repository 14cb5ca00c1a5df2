// Package pdf renders downloadable documents with maroto. The layout
// engines hand it ordered row data; everything font- and box-related
// stays here.
package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
	GenerateCuttingList(ctx context.Context, data CuttingListData) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

type marotoProvider struct{}

func New() Provider {
	return &marotoProvider{}
}
