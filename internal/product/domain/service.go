package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category string
}

type UpdateProductRequest struct {
	ID       string
	Name     *string
	Price    *decimal.Decimal
	Category *string
}

type ListProductRequest struct {
	Search string
	Limit  int
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	List(ctx context.Context, req ListProductRequest) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (Product, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound       = errors.New("product_not_found")
	ErrAlreadyExists  = errors.New("product_already_exists")
	ErrInvalidRequest = errors.New("invalid_product")
	ErrInvalidPrice   = errors.New("invalid_price")
)
