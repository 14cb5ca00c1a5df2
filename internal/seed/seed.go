// Package seed loads demo catalog data for local development.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/meatline/internal/customer/domain"
	productdomain "github.com/smallbiznis/meatline/internal/product/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type demoProduct struct {
	ID       string
	Name     string
	Price    string
	Category string
}

type demoCustomer struct {
	Name      string
	Email     string
	Password  string
	Preferred []string
}

var demoProducts = []demoProduct{
	{"AMGSL", "AMG Sirloin Whole", "19.99", "Beef"},
	{"AMGSL250", "AMG Sirloin 250g", "21.99", "Beef"},
	{"JCMB2SL", "JC MB2 Sirloin Whole", "28", "Beef"},
	{"JCMB4SL", "JC MB4 Sirloin Whole", "35", "Beef"},
	{"CHICKEN10", "Chicken Size 10", "7", "Chicken"},
	{"CHICKEN16", "Chicken Size 16", "9", "Chicken"},
	{"CHICKENT", "Chicken Thigh", "14.99", "Chicken"},
	{"CHICKENB", "Chicken Breast", "9.99", "Chicken"},
	{"WBD", "Wagyu Diced", "22.4", "Beef"},
	{"WBM", "Wagyu Mince", "12", "Beef"},
}

var demoCustomers = []demoCustomer{
	{"Kago", "kago@verduno.com", "Kago1234", []string{"AMGSL", "AMGSL250"}},
	{"Ben", "ben@verduno.com", "Ben1234", []string{"WBD", "CHICKENB"}},
	{"Ko", "ko@verduno.com", "Ko123", []string{"CHICKEN16", "WBM"}},
	{"Kamal", "kamal@verduno.com", "Kamal23", nil},
}

// EnsureDemoData inserts the demo products and customers. Rows that
// already exist are left untouched, so repeated startups are safe.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProductsTx(ctx, tx); err != nil {
			return err
		}
		return ensureCustomersTx(ctx, tx, node)
	})
}

func ensureProductsTx(ctx context.Context, tx *gorm.DB) error {
	for _, p := range demoProducts {
		var existing productdomain.Product
		err := tx.WithContext(ctx).Where("id = ?", p.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		product := productdomain.Product{
			ID:        p.ID,
			Name:      p.Name,
			Price:     price,
			Category:  p.Category,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureCustomersTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, c := range demoCustomers {
		email := strings.ToLower(c.Email)

		var existing customerdomain.Customer
		err := tx.WithContext(ctx).Where("email = ?", email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		customer := customerdomain.Customer{
			ID:                  node.Generate(),
			Name:                c.Name,
			Email:               email,
			Password:            string(hashed),
			PreferredProductIDs: datatypes.NewJSONSlice(customerdomain.TruncatePreferred(c.Preferred)),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
			return err
		}
	}
	return nil
}
