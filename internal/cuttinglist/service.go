package cuttinglist

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/meatline/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/meatline/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoInvoicesForDate = errors.New("no_invoices_for_date")

type Service interface {
	// Rows returns the full cutting-list row sequence for a delivery date.
	Rows(ctx context.Context, date time.Time) ([]Row, error)
}

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p ServiceParam) Service {
	return &service{
		db:  p.DB,
		log: p.Log.Named("cuttinglist.service"),
	}
}

type itemRow struct {
	InvoiceID   snowflake.ID
	ProductName string
	Quantity    int
}

func (s *service) Rows(ctx context.Context, date time.Time) ([]Row, error) {
	day := invoicedomain.DateOnly(date)

	var invoices []invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Where("delivery_date = ?", day).
		Order("id").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ErrNoInvoicesForDate
	}

	invoiceIDs := make([]snowflake.ID, 0, len(invoices))
	customerIDs := make([]snowflake.ID, 0, len(invoices))
	for _, invoice := range invoices {
		invoiceIDs = append(invoiceIDs, invoice.ID)
		customerIDs = append(customerIDs, invoice.CustomerID)
	}

	var customers []customerdomain.Customer
	err = s.db.WithContext(ctx).
		Where("id IN ?", customerIDs).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	customerNames := make(map[snowflake.ID]string, len(customers))
	for _, customer := range customers {
		customerNames[customer.ID] = customer.Name
	}

	var items []itemRow
	err = s.db.WithContext(ctx).
		Table("line_items").
		Select("line_items.invoice_id, products.name AS product_name, line_items.quantity").
		Joins("JOIN products ON products.id = line_items.product_id").
		Where("line_items.invoice_id IN ?", invoiceIDs).
		Order("line_items.invoice_id, line_items.id").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	itemsByInvoice := make(map[snowflake.ID][]ItemLine, len(invoices))
	for _, item := range items {
		itemsByInvoice[item.InvoiceID] = append(itemsByInvoice[item.InvoiceID], ItemLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}

	// Group by display name, invoices kept in retrieval order. Two
	// customers sharing a name share a block, matching the document's
	// per-name grouping.
	grouped := make(map[string]*CustomerGroup)
	var order []string
	for _, invoice := range invoices {
		name := customerNames[invoice.CustomerID]
		group, ok := grouped[name]
		if !ok {
			group = &CustomerGroup{CustomerName: name}
			grouped[name] = group
			order = append(order, name)
		}
		group.Invoices = append(group.Invoices, InvoiceGroup{
			InvoiceNumber: invoice.InvoiceNumber,
			Items:         itemsByInvoice[invoice.ID],
		})
	}

	groups := make([]CustomerGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *grouped[name])
	}

	s.log.Debug("cutting list built",
		zap.String("date", day.Format("2006-01-02")),
		zap.Int("invoices", len(invoices)),
		zap.Int("customers", len(groups)),
	)
	return BuildRows(groups), nil
}
