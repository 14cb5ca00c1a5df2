package pdf

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type InvoiceData struct {
	InvoiceNumber string
	CreatedDate   string
	DeliveryDate  string
	Status        string

	CustomerID    string
	CustomerName  string
	CustomerEmail string

	Items       []InvoiceItem
	TotalAmount string
}

type InvoiceItem struct {
	ProductID   string
	ProductName string
	UnitPrice   string
	Quantity    int
	TotalPrice  string
}

func (p *marotoProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "INVOICE", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New("Invoice number: "+data.InvoiceNumber, props.Text{Top: 0}),
			text.New("Invoice date: "+data.CreatedDate, props.Text{Top: 5}),
			text.New("Delivery date: "+data.DeliveryDate, props.Text{Top: 10}),
			text.New("Status: "+data.Status, props.Text{Top: 15}),
		),
		col.New(6).Add(
			text.New(data.CustomerName, props.Text{Style: fontstyle.Bold}),
			text.New("Customer ID: "+data.CustomerID, props.Text{Top: 5}),
			text.New(data.CustomerEmail, props.Text{Top: 10}),
		),
	)

	m.AddRow(10,
		text.NewCol(2, "Product ID", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Product Name", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Unit Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Quantity", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(8,
			text.NewCol(2, item.ProductID, props.Text{Size: 9}),
			text.NewCol(4, item.ProductName, props.Text{Size: 9}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, strconv.Itoa(item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.TotalPrice, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		text.NewCol(12, "Total Amount: "+data.TotalAmount, props.Text{
			Size:  13,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   4,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
