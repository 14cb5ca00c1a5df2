// Package domain contains persistence models for customers.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// MaxPreferredProducts caps the preferred-product list. Writes beyond the
// cap are truncated to the first 99 entries, never rejected.
const MaxPreferredProducts = 99

// Customer is a wholesale buyer. The password hash is opaque to this
// service; authentication lives elsewhere.
type Customer struct {
	ID                  snowflake.ID                 `gorm:"primaryKey" json:"id"`
	Name                string                       `gorm:"type:varchar(120);not null" json:"name"`
	Email               string                       `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	Password            string                       `gorm:"type:varchar(200);not null" json:"-"`
	PreferredProductIDs datatypes.JSONSlice[string]  `gorm:"not null" json:"preferred_product_ids"`
	CreatedAt           time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// TruncatePreferred enforces MaxPreferredProducts on a preferred-product list.
func TruncatePreferred(ids []string) []string {
	if len(ids) > MaxPreferredProducts {
		return ids[:MaxPreferredProducts]
	}
	return ids
}
