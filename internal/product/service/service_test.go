package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/meatline/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	return NewService(ServiceParam{DB: db, Log: zap.NewNop()})
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateProductRequest{
		ID:       "AMGSL250",
		Name:     "AMG Sirloin 250g",
		Price:    decimal.RequireFromString("21.99"),
		Category: "Beef",
	})
	require.NoError(t, err)
	assert.Equal(t, "AMGSL250", created.ID)

	got, err := svc.GetByID(context.Background(), "AMGSL250")
	require.NoError(t, err)
	assert.Equal(t, "AMG Sirloin 250g", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("21.99")))
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	svc := newTestService(t)

	req := domain.CreateProductRequest{
		ID:       "WBM",
		Name:     "Wagyu Mince",
		Price:    decimal.RequireFromString("12"),
		Category: "Beef",
	}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateProductRequest{
		ID:       "WBM",
		Name:     "Wagyu Mince",
		Price:    decimal.RequireFromString("-1"),
		Category: "Beef",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestCreateRejectsBlankFields(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateProductRequest{
		ID:    "  ",
		Name:  "Wagyu Mince",
		Price: decimal.RequireFromString("12"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestUpdatePrice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateProductRequest{
		ID:       "WBM",
		Name:     "Wagyu Mince",
		Price:    decimal.RequireFromString("12"),
		Category: "Beef",
	})
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("13.50")
	updated, err := svc.Update(context.Background(), domain.UpdateProductRequest{
		ID:    "WBM",
		Price: &newPrice,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, "Wagyu Mince", updated.Name)
}

func TestListSearchMatchesIDOrName(t *testing.T) {
	svc := newTestService(t)

	for _, p := range []domain.CreateProductRequest{
		{ID: "AMGSL", Name: "AMG Sirloin Whole", Price: decimal.RequireFromString("19.99"), Category: "Beef"},
		{ID: "CHICKEN10", Name: "Chicken Size 10", Price: decimal.RequireFromString("7"), Category: "Chicken"},
		{ID: "WBM", Name: "Wagyu Mince", Price: decimal.RequireFromString("12"), Category: "Beef"},
	} {
		_, err := svc.Create(context.Background(), p)
		require.NoError(t, err)
	}

	byID, err := svc.List(context.Background(), domain.ListProductRequest{Search: "CHICKEN"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "CHICKEN10", byID[0].ID)

	byName, err := svc.List(context.Background(), domain.ListProductRequest{Search: "Wagyu"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "WBM", byName[0].ID)
}

func TestDeleteUnknownProduct(t *testing.T) {
	svc := newTestService(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), "NOPE"), domain.ErrNotFound)
}
