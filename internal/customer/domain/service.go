package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCustomerRequest struct {
	Name                string
	Email               string
	Password            string
	PreferredProductIDs []string
}

type UpdateCustomerRequest struct {
	ID                  snowflake.ID
	Name                *string
	Email               *string
	Password            *string
	PreferredProductIDs *[]string
}

type ListCustomerRequest struct {
	Search string
	Limit  int
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) ([]Customer, error)
	GetByID(ctx context.Context, id snowflake.ID) (Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound       = errors.New("customer_not_found")
	ErrEmailExists    = errors.New("email_already_exists")
	ErrInvalidRequest = errors.New("invalid_customer")
)
