package service

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

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestService(t *testing.T) (invoicedomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	return svc, db, node
}

func seedProduct(t *testing.T, db *gorm.DB, id, name, price string) {
	t.Helper()
	product := productdomain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "Beef",
	}
	require.NoError(t, db.Create(&product).Error)
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) snowflake.ID {
	t.Helper()
	customer := customerdomain.Customer{
		ID:       node.Generate(),
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer.ID
}

func TestCreateOrAppendAssignsDailyNumber(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	seedProduct(t, db, "CHICKEN10", "Chicken Size 10", "7")
	customerID := seedCustomer(t, db, node, "Kago")

	date := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	snapshot, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items: []invoicedomain.OrderItemRequest{
			{ProductID: "AMGSL", Quantity: 2},
			{ProductID: "CHICKEN10", Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-20260315-0001", snapshot.InvoiceNumber)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, snapshot.Status)
	assert.Equal(t, "Kago", snapshot.CustomerName)
	assert.Len(t, snapshot.Items, 2)
	// 2 x 19.99 + 3 x 7
	assert.True(t, snapshot.TotalAmount.Equal(decimal.RequireFromString("60.98")),
		"total %s", snapshot.TotalAmount)

	// Delivery date is stored at day granularity.
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), snapshot.DeliveryDate.UTC())
}

func TestCreateOrAppendConsolidatesPendingInvoice(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	seedProduct(t, db, "WBM", "Wagyu Mince", "12")
	customerID := seedCustomer(t, db, node, "Kago")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 2}},
	})
	require.NoError(t, err)

	second, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "WBM", Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Len(t, second.Items, 2)
	// 2 x 19.99 + 5 x 12
	assert.True(t, second.TotalAmount.Equal(decimal.RequireFromString("99.98")),
		"total %s", second.TotalAmount)

	var count int64
	require.NoError(t, db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrAppendSkipsNonPendingInvoices(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)

	completed := invoicedomain.InvoiceStatusCompleted
	_, err = svc.Update(context.Background(), invoicedomain.UpdateInvoiceRequest{
		ID:     first.ID,
		Status: &completed,
	})
	require.NoError(t, err)

	second, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 2}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "INV-20260315-0002", second.InvoiceNumber)
}

func TestCreateOrAppendSeparatesCustomersAndDates(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	kago := seedCustomer(t, db, node, "Kago")
	ben := seedCustomer(t, db, node, "Ben")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   kago,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)

	second, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   ben,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-20260315-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-20260315-0002", second.InvoiceNumber)

	// A different day starts its own sequence.
	third, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   kago,
		DeliveryDate: date.AddDate(0, 0, 1),
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-20260316-0001", third.InvoiceNumber)
}

func TestCreateOrAppendRejectsEmptyOrder(t *testing.T) {
	svc, db, node := newTestService(t)
	customerID := seedCustomer(t, db, node, "Kago")

	_, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now(),
	})
	assert.ErrorIs(t, err, invoicedomain.ErrEmptyOrder)
}

func TestCreateOrAppendRejectsUnknownCustomer(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")

	_, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   node.Generate(),
		DeliveryDate: time.Now(),
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	assert.ErrorIs(t, err, customerdomain.ErrNotFound)
}

func TestCreateOrAppendUnknownProductWritesNothing(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")

	_, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now(),
		Items: []invoicedomain.OrderItemRequest{
			{ProductID: "AMGSL", Quantity: 2},
			{ProductID: "NOPE", Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, productdomain.ErrNotFound)

	var invoices, items int64
	require.NoError(t, db.Model(&invoicedomain.Invoice{}).Count(&invoices).Error)
	require.NoError(t, db.Model(&invoicedomain.LineItem{}).Count(&items).Error)
	assert.Zero(t, invoices)
	assert.Zero(t, items)
}

func TestCreateOrAppendInvalidQuantityWritesNothing(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")

	_, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now(),
		Items: []invoicedomain.OrderItemRequest{
			{ProductID: "AMGSL", Quantity: 2},
			{ProductID: "AMGSL", Quantity: 0},
		},
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidQuantity)

	var items int64
	require.NoError(t, db.Model(&invoicedomain.LineItem{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestCreateOrAppendSequenceExhausted(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")
	other := seedCustomer(t, db, node, "Ben")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	last := invoicedomain.Invoice{
		ID:            node.Generate(),
		InvoiceNumber: "INV-20260315-9999",
		CustomerID:    other,
		DeliveryDate:  date,
		Status:        invoicedomain.InvoiceStatusCompleted,
		TotalAmount:   decimal.Zero,
	}
	require.NoError(t, db.Create(&last).Error)

	_, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	assert.ErrorIs(t, err, invoicedomain.ErrSequenceExhausted)
}

func TestUpdateQuantityRecomputesTotal(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	seedProduct(t, db, "WBM", "Wagyu Mince", "12")
	customerID := seedCustomer(t, db, node, "Kago")

	snapshot, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now(),
		Items: []invoicedomain.OrderItemRequest{
			{ProductID: "AMGSL", Quantity: 2},
			{ProductID: "WBM", Quantity: 1},
		},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), invoicedomain.UpdateInvoiceRequest{
		ID: snapshot.ID,
		Items: []invoicedomain.UpdateItemQuantity{
			{LineItemID: snapshot.Items[0].ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Items[0].Quantity)
	// 5 x 19.99 + 1 x 12
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("111.95")),
		"total %s", updated.TotalAmount)
}

func TestUpdateLineItemQuantity(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "WBM", "Wagyu Mince", "12")
	customerID := seedCustomer(t, db, node, "Kago")

	snapshot, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now(),
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "WBM", Quantity: 2}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateLineItemQuantity(context.Background(), snapshot.ID, snapshot.Items[0].ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Items[0].Quantity)
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("84")),
		"total %s", updated.TotalAmount)

	_, err = svc.UpdateLineItemQuantity(context.Background(), snapshot.ID, snapshot.Items[0].ID, 0)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidQuantity)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")

	snapshot, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now(),
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)

	bogus := invoicedomain.InvoiceStatus("Shipped")
	_, err = svc.Update(context.Background(), invoicedomain.UpdateInvoiceRequest{
		ID:     snapshot.ID,
		Status: &bogus,
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidStatus)
}

func TestUpdateRejectsForeignLineItem(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)

	second, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date.AddDate(0, 0, 1),
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), invoicedomain.UpdateInvoiceRequest{
		ID: first.ID,
		Items: []invoicedomain.UpdateItemQuantity{
			{LineItemID: second.Items[0].ID, Quantity: 9},
		},
	})
	assert.ErrorIs(t, err, invoicedomain.ErrLineItemNotFound)

	// The foreign item keeps its quantity.
	reloaded, err := svc.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Items[0].Quantity)
}

func TestDeleteRemovesLineItems(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")

	snapshot, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: time.Now(),
		Items: []invoicedomain.OrderItemRequest{
			{ProductID: "AMGSL", Quantity: 1},
			{ProductID: "AMGSL", Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), snapshot.ID))

	var invoices, items int64
	require.NoError(t, db.Model(&invoicedomain.Invoice{}).Count(&invoices).Error)
	require.NoError(t, db.Model(&invoicedomain.LineItem{}).Count(&items).Error)
	assert.Zero(t, invoices)
	assert.Zero(t, items)

	assert.ErrorIs(t, svc.Delete(context.Background(), snapshot.ID), invoicedomain.ErrNotFound)
}

func TestNextInvoiceNumberPreview(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	customerID := seedCustomer(t, db, node, "Kago")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	number, err := svc.NextInvoiceNumber(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260315-0001", number)

	_, err = svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customerID,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)

	number, err = svc.NextInvoiceNumber(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260315-0002", number)
}

func TestListFiltersByDateAndSearch(t *testing.T) {
	svc, db, node := newTestService(t)
	seedProduct(t, db, "AMGSL", "AMG Sirloin Whole", "19.99")
	kago := seedCustomer(t, db, node, "Kago")
	ben := seedCustomer(t, db, node, "Ben")

	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   kago,
		DeliveryDate: date,
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.CreateOrAppend(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   ben,
		DeliveryDate: date.AddDate(0, 0, 1),
		Items:        []invoicedomain.OrderItemRequest{{ProductID: "AMGSL", Quantity: 1}},
	})
	require.NoError(t, err)

	byDate, err := svc.List(context.Background(), invoicedomain.ListInvoiceRequest{DeliveryDate: &date})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "Kago", byDate[0].CustomerName)

	bySearch, err := svc.List(context.Background(), invoicedomain.ListInvoiceRequest{Search: "Ben"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Ben", bySearch[0].CustomerName)

	byNumber, err := svc.List(context.Background(), invoicedomain.ListInvoiceRequest{Search: "INV-20260316"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, "INV-20260316-0001", byNumber[0].InvoiceNumber)
}
