package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/meatline/internal/customer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParam{DB: db, Log: zap.NewNop(), GenID: node})
}

func TestCreateHashesPasswordAndLowercasesEmail(t *testing.T) {
	svc := newTestService(t)

	customer, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:     "Kago",
		Email:    "Kago@Verduno.com",
		Password: "Kago1234",
	})
	require.NoError(t, err)

	assert.Equal(t, "kago@verduno.com", customer.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte("Kago1234")))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:     "Kago",
		Email:    "kago@verduno.com",
		Password: "Kago1234",
	})
	require.NoError(t, err)

	// Same address in a different case is still a duplicate.
	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:     "Other",
		Email:    "KAGO@Verduno.com",
		Password: "pw",
	})
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestCreateTruncatesPreferredProducts(t *testing.T) {
	svc := newTestService(t)

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("P%03d", i)
	}

	customer, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:                "Kago",
		Email:               "kago@verduno.com",
		Password:            "Kago1234",
		PreferredProductIDs: ids,
	})
	require.NoError(t, err)

	require.Len(t, customer.PreferredProductIDs, domain.MaxPreferredProducts)
	assert.Equal(t, "P000", customer.PreferredProductIDs[0])
	assert.Equal(t, "P098", customer.PreferredProductIDs[domain.MaxPreferredProducts-1])
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:     "Kago",
		Email:    "kago@verduno.com",
		Password: "pw",
	})
	require.NoError(t, err)

	ben, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:     "Ben",
		Email:    "ben@verduno.com",
		Password: "pw",
	})
	require.NoError(t, err)

	taken := "kago@verduno.com"
	_, err = svc.Update(context.Background(), domain.UpdateCustomerRequest{
		ID:    ben.ID,
		Email: &taken,
	})
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMatchesNumericSearchAgainstID(t *testing.T) {
	svc := newTestService(t)

	kago, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:     "Kago",
		Email:    "kago@verduno.com",
		Password: "pw",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:     "Ben",
		Email:    "ben@verduno.com",
		Password: "pw",
	})
	require.NoError(t, err)

	results, err := svc.List(context.Background(), domain.ListCustomerRequest{
		Search: kago.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Kago", results[0].Name)
}
