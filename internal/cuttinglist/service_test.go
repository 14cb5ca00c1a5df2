package cuttinglist

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/meatline/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/meatline/internal/invoice/domain"
	productdomain "github.com/smallbiznis/meatline/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&productdomain.Product{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.LineItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &fixture{
		db:   db,
		node: node,
		svc:  NewService(ServiceParam{DB: db, Log: zap.NewNop()}),
	}
}

func (f *fixture) addProduct(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.db.Create(&productdomain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString("10"),
		Category: "Beef",
	}).Error)
}

func (f *fixture) addCustomer(t *testing.T, name string) snowflake.ID {
	t.Helper()
	customer := customerdomain.Customer{
		ID:       f.node.Generate(),
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "x",
	}
	require.NoError(t, f.db.Create(&customer).Error)
	return customer.ID
}

func (f *fixture) addInvoice(t *testing.T, customerID snowflake.ID, number string, date time.Time, items ...string) {
	t.Helper()
	invoice := invoicedomain.Invoice{
		ID:            f.node.Generate(),
		InvoiceNumber: number,
		CustomerID:    customerID,
		DeliveryDate:  invoicedomain.DateOnly(date),
		Status:        invoicedomain.InvoiceStatusPending,
		TotalAmount:   decimal.Zero,
	}
	require.NoError(t, f.db.Create(&invoice).Error)

	for i, productID := range items {
		require.NoError(t, f.db.Create(&invoicedomain.LineItem{
			ID:         f.node.Generate(),
			InvoiceID:  invoice.ID,
			ProductID:  productID,
			Quantity:   i + 1,
			UnitPrice:  decimal.RequireFromString("10"),
			TotalPrice: decimal.RequireFromString("10"),
		}).Error)
	}
}

func TestRowsGroupsByCustomer(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "AMGSL", "AMG Sirloin Whole")
	f.addProduct(t, "WBM", "Wagyu Mince")
	zoe := f.addCustomer(t, "Zoe")
	ana := f.addCustomer(t, "Ana")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	f.addInvoice(t, zoe, "INV-20260315-0001", date, "AMGSL")
	f.addInvoice(t, ana, "INV-20260315-0002", date, "WBM", "AMGSL")

	rows, err := f.svc.Rows(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{Label: "Ana", Product: "Wagyu Mince", Quantity: "1"},
		{Product: "AMG Sirloin Whole", Quantity: "2"},
		{Label: "INV-20260315-0002"},
		{},
		{Label: "Zoe", Product: "AMG Sirloin Whole", Quantity: "1"},
		{Label: "INV-20260315-0001"},
		{},
	}, rows)
}

func TestRowsIgnoresOtherDates(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "AMGSL", "AMG Sirloin Whole")
	ana := f.addCustomer(t, "Ana")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	f.addInvoice(t, ana, "INV-20260315-0001", date, "AMGSL")
	f.addInvoice(t, ana, "INV-20260316-0001", date.AddDate(0, 0, 1), "AMGSL")

	rows, err := f.svc.Rows(context.Background(), date)
	require.NoError(t, err)

	labels := make([]string, 0)
	for _, row := range rows {
		if row.Label != "" {
			labels = append(labels, row.Label)
		}
	}
	assert.Equal(t, []string{"Ana", "INV-20260315-0001"}, labels)
}

func TestRowsNoInvoicesForDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Rows(context.Background(), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoInvoicesForDate)
}
