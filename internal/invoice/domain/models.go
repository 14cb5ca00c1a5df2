// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "Pending"
	InvoiceStatusCompleted InvoiceStatus = "Completed"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusCompleted, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Invoice is one delivery commitment for a customer. TotalAmount is a
// cached value recomputed from the line items after every mutation; it is
// never adjusted incrementally.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	CustomerID    snowflake.ID    `gorm:"not null;index:ix_invoices_customer_delivery" json:"customer_id"`
	DeliveryDate  time.Time       `gorm:"type:date;not null;index:ix_invoices_customer_delivery;index" json:"delivery_date"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// LineItem is one product-quantity entry within an invoice. UnitPrice is
// captured from the product at order time and is independent of later
// catalog price edits.
type LineItem struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID  snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ProductID  string          `gorm:"type:varchar(50);not null;index" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "line_items" }

// DateOnly strips the clock from t, keeping the calendar day in UTC.
// Delivery dates are stored and compared at day granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
