package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one requested (product, quantity) pair.
type OrderItemRequest struct {
	ProductID string
	Quantity  int
}

// CreateInvoiceRequest asks for items to be billed to a customer on a
// delivery date. The service consolidates into an existing pending
// invoice for the same (customer, date) when one exists.
type CreateInvoiceRequest struct {
	CustomerID   snowflake.ID
	DeliveryDate time.Time
	Items        []OrderItemRequest
}

type ListInvoiceRequest struct {
	Search       string
	DeliveryDate *time.Time
}

type UpdateItemQuantity struct {
	LineItemID snowflake.ID
	Quantity   int
}

type UpdateInvoiceRequest struct {
	ID           snowflake.ID
	Status       *InvoiceStatus
	DeliveryDate *time.Time
	Items        []UpdateItemQuantity
}

// LineItemSnapshot is a read view of one line item with its product
// resolved by explicit join.
type LineItemSnapshot struct {
	ID              snowflake.ID    `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductCategory string          `json:"product_category"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// InvoiceSnapshot is the read view returned by every mutating operation.
type InvoiceSnapshot struct {
	ID            snowflake.ID       `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    snowflake.ID       `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	DeliveryDate  time.Time          `json:"delivery_date"`
	CreatedAt     time.Time          `json:"created_at"`
	Status        InvoiceStatus      `json:"status"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Items         []LineItemSnapshot `json:"items"`
}

type Service interface {
	// CreateOrAppend validates the whole batch, then either appends to the
	// customer's pending invoice for the delivery date or creates a new one.
	CreateOrAppend(ctx context.Context, req CreateInvoiceRequest) (InvoiceSnapshot, error)
	List(ctx context.Context, req ListInvoiceRequest) ([]InvoiceSnapshot, error)
	GetByID(ctx context.Context, id snowflake.ID) (InvoiceSnapshot, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (InvoiceSnapshot, error)
	UpdateLineItemQuantity(ctx context.Context, invoiceID, lineItemID snowflake.ID, quantity int) (InvoiceSnapshot, error)
	Delete(ctx context.Context, id snowflake.ID) error
	// NextInvoiceNumber previews the number a new invoice would receive on
	// the given date. Creation re-derives it inside the transaction.
	NextInvoiceNumber(ctx context.Context, date time.Time) (string, error)
}

var (
	ErrNotFound          = errors.New("invoice_not_found")
	ErrLineItemNotFound  = errors.New("line_item_not_found")
	ErrEmptyOrder        = errors.New("empty_order")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrNumberConflict    = errors.New("invoice_number_conflict")
	ErrSequenceExhausted = errors.New("invoice_sequence_exhausted")
)
