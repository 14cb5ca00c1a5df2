// Package domain contains persistence models for the product catalog.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one sellable catalog entry. The ID is an operator-assigned
// code (e.g. "AMGSL250"), not a generated key.
type Product struct {
	ID        string          `gorm:"primaryKey;type:varchar(50)" json:"id"`
	Name      string          `gorm:"type:varchar(120);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Category  string          `gorm:"type:varchar(50);not null" json:"category"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }
