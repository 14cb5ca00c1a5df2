package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/meatline/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/meatline/internal/invoice/domain"
	productdomain "github.com/smallbiznis/meatline/internal/product/domain"
	pkgdb "github.com/smallbiznis/meatline/pkg/db"
	"github.com/smallbiznis/meatline/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxNumberRetries bounds regeneration attempts when two transactions
// race to the same invoice number on one day.
const maxNumberRetries = 3

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	invoicerepo  repository.Repository[invoicedomain.Invoice]
	itemrepo     repository.Repository[invoicedomain.LineItem]
	customerrepo repository.Repository[customerdomain.Customer]
	productrepo  repository.Repository[productdomain.Product]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,

		invoicerepo:  repository.ProvideStore[invoicedomain.Invoice](p.DB),
		itemrepo:     repository.ProvideStore[invoicedomain.LineItem](p.DB),
		customerrepo: repository.ProvideStore[customerdomain.Customer](p.DB),
		productrepo:  repository.ProvideStore[productdomain.Product](p.DB),
	}
}

// lineDraft is a fully validated line item before anything is written.
type lineDraft struct {
	productID  string
	quantity   int
	unitPrice  decimal.Decimal
	totalPrice decimal.Decimal
}

func (s *Service) CreateOrAppend(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.InvoiceSnapshot, error) {
	if len(req.Items) == 0 {
		return invoicedomain.InvoiceSnapshot{}, invoicedomain.ErrEmptyOrder
	}
	deliveryDate := invoicedomain.DateOnly(req.DeliveryDate)

	var snapshot invoicedomain.InvoiceSnapshot
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			customer, err := s.customerrepo.WithTrx(tx).FindOne(ctx, &customerdomain.Customer{ID: req.CustomerID})
			if err != nil {
				return err
			}
			if customer == nil {
				return customerdomain.ErrNotFound
			}

			// Validate the entire batch before the first write so a bad
			// later item cannot leave a half-updated invoice behind.
			drafts, err := s.resolveBatch(ctx, tx, req.Items)
			if err != nil {
				return err
			}

			invoice, err := s.lockPendingInvoice(ctx, tx, req.CustomerID, deliveryDate)
			if err != nil {
				return err
			}
			if invoice == nil {
				number, err := nextInvoiceNumberTx(ctx, tx, deliveryDate)
				if err != nil {
					return err
				}
				now := time.Now().UTC()
				invoice = &invoicedomain.Invoice{
					ID:            s.genID.Generate(),
					InvoiceNumber: number,
					CustomerID:    req.CustomerID,
					DeliveryDate:  deliveryDate,
					Status:        invoicedomain.InvoiceStatusPending,
					TotalAmount:   decimal.Zero,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := s.invoicerepo.WithTrx(tx).Create(ctx, invoice); err != nil {
					return err
				}
			}

			items := make([]*invoicedomain.LineItem, 0, len(drafts))
			for _, draft := range drafts {
				items = append(items, &invoicedomain.LineItem{
					ID:         s.genID.Generate(),
					InvoiceID:  invoice.ID,
					ProductID:  draft.productID,
					Quantity:   draft.quantity,
					UnitPrice:  draft.unitPrice,
					TotalPrice: draft.totalPrice,
					CreatedAt:  time.Now().UTC(),
				})
			}
			if err := s.itemrepo.WithTrx(tx).BatchCreate(ctx, items); err != nil {
				return err
			}

			if err := s.recomputeTotal(ctx, tx, invoice.ID); err != nil {
				return err
			}

			snapshot, err = s.loadSnapshot(ctx, tx, invoice.ID)
			return err
		})
		if err != nil {
			// Duplicate invoice number means another writer claimed the
			// sequence first. Rerun the whole read-decide-write cycle.
			if pkgdb.IsDuplicateKeyErr(err) {
				s.log.Warn("invoice number collision, retrying",
					zap.Int64("customer_id", int64(req.CustomerID)),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return invoicedomain.InvoiceSnapshot{}, err
		}
		return snapshot, nil
	}
	return invoicedomain.InvoiceSnapshot{}, invoicedomain.ErrNumberConflict
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) ([]invoicedomain.InvoiceSnapshot, error) {
	stmt := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{})
	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + search + "%"
		stmt = stmt.
			Joins("JOIN customers ON customers.id = invoices.customer_id").
			Where("invoices.invoice_number LIKE ? OR customers.name LIKE ?", pattern, pattern)
	}
	if req.DeliveryDate != nil {
		stmt = stmt.Where("invoices.delivery_date = ?", invoicedomain.DateOnly(*req.DeliveryDate))
	}

	var invoices []invoicedomain.Invoice
	if err := stmt.
		Order("invoices.delivery_date DESC, invoices.created_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	snapshots := make([]invoicedomain.InvoiceSnapshot, 0, len(invoices))
	for _, invoice := range invoices {
		snapshot, err := s.loadSnapshot(ctx, s.db, invoice.ID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.InvoiceSnapshot, error) {
	return s.loadSnapshot(ctx, s.db.WithContext(ctx), id)
}

func (s *Service) Update(ctx context.Context, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.InvoiceSnapshot, error) {
	var snapshot invoicedomain.InvoiceSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoicerepo.WithTrx(tx).FindOne(ctx, &invoicedomain.Invoice{ID: req.ID})
		if err != nil {
			return err
		}
		if invoice == nil {
			return invoicedomain.ErrNotFound
		}

		if req.Status != nil {
			if !req.Status.Valid() {
				return invoicedomain.ErrInvalidStatus
			}
			invoice.Status = *req.Status
		}
		if req.DeliveryDate != nil {
			invoice.DeliveryDate = invoicedomain.DateOnly(*req.DeliveryDate)
		}

		// Quantity edits are validated up front; either every requested
		// change applies or none do.
		items := make([]*invoicedomain.LineItem, 0, len(req.Items))
		for _, change := range req.Items {
			if change.Quantity <= 0 {
				return invoicedomain.ErrInvalidQuantity
			}
			item, err := s.itemrepo.WithTrx(tx).FindOne(ctx, &invoicedomain.LineItem{ID: change.LineItemID})
			if err != nil {
				return err
			}
			if item == nil || item.InvoiceID != invoice.ID {
				return invoicedomain.ErrLineItemNotFound
			}
			item.Quantity = change.Quantity
			item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(change.Quantity)))
			items = append(items, item)
		}
		for _, item := range items {
			if err := s.itemrepo.WithTrx(tx).Save(ctx, item); err != nil {
				return err
			}
		}

		invoice.UpdatedAt = time.Now().UTC()
		if err := s.invoicerepo.WithTrx(tx).Save(ctx, invoice); err != nil {
			return err
		}
		if err := s.recomputeTotal(ctx, tx, invoice.ID); err != nil {
			return err
		}

		snapshot, err = s.loadSnapshot(ctx, tx, invoice.ID)
		return err
	})
	if err != nil {
		return invoicedomain.InvoiceSnapshot{}, err
	}
	return snapshot, nil
}

func (s *Service) UpdateLineItemQuantity(ctx context.Context, invoiceID, lineItemID snowflake.ID, quantity int) (invoicedomain.InvoiceSnapshot, error) {
	if quantity <= 0 {
		return invoicedomain.InvoiceSnapshot{}, invoicedomain.ErrInvalidQuantity
	}

	var snapshot invoicedomain.InvoiceSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.itemrepo.WithTrx(tx).FindOne(ctx, &invoicedomain.LineItem{ID: lineItemID})
		if err != nil {
			return err
		}
		if item == nil || item.InvoiceID != invoiceID {
			return invoicedomain.ErrLineItemNotFound
		}

		item.Quantity = quantity
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		if err := s.itemrepo.WithTrx(tx).Save(ctx, item); err != nil {
			return err
		}
		if err := s.recomputeTotal(ctx, tx, invoiceID); err != nil {
			return err
		}

		snapshot, err = s.loadSnapshot(ctx, tx, invoiceID)
		return err
	})
	if err != nil {
		return invoicedomain.InvoiceSnapshot{}, err
	}
	return snapshot, nil
}

// Delete removes the invoice and its line items. The cascade is explicit:
// items first, then the invoice, inside one transaction.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoicerepo.WithTrx(tx).FindOne(ctx, &invoicedomain.Invoice{ID: id})
		if err != nil {
			return err
		}
		if invoice == nil {
			return invoicedomain.ErrNotFound
		}
		if err := s.itemrepo.WithTrx(tx).Delete(ctx, &invoicedomain.LineItem{InvoiceID: id}); err != nil {
			return err
		}
		return s.invoicerepo.WithTrx(tx).Delete(ctx, &invoicedomain.Invoice{ID: id})
	})
}

func (s *Service) NextInvoiceNumber(ctx context.Context, date time.Time) (string, error) {
	return nextInvoiceNumberTx(ctx, s.db, date)
}

// resolveBatch resolves every requested product and validates quantities,
// capturing the current unit price into the draft. No writes happen here.
func (s *Service) resolveBatch(ctx context.Context, tx *gorm.DB, items []invoicedomain.OrderItemRequest) ([]lineDraft, error) {
	drafts := make([]lineDraft, 0, len(items))
	for _, item := range items {
		productID := strings.TrimSpace(item.ProductID)
		product, err := s.productrepo.WithTrx(tx).FindOne(ctx, &productdomain.Product{ID: productID})
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", productdomain.ErrNotFound, productID)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: %s", invoicedomain.ErrInvalidQuantity, productID)
		}

		quantity := decimal.NewFromInt(int64(item.Quantity))
		drafts = append(drafts, lineDraft{
			productID:  product.ID,
			quantity:   item.Quantity,
			unitPrice:  product.Price,
			totalPrice: product.Price.Mul(quantity),
		})
	}
	return drafts, nil
}

// lockPendingInvoice finds the customer's pending invoice for the date,
// taking a row lock so concurrent consolidations for the same key
// serialize. SQLite has no FOR UPDATE; its transactions already serialize
// writers.
func (s *Service) lockPendingInvoice(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, deliveryDate time.Time) (*invoicedomain.Invoice, error) {
	stmt := tx.WithContext(ctx).
		Where("customer_id = ? AND delivery_date = ? AND status = ?",
			customerID, deliveryDate, invoicedomain.InvoiceStatusPending).
		Order("id")
	if tx.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invoice invoicedomain.Invoice
	if err := stmt.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// recomputeTotal rewrites the invoice total as the full sum of its line
// items. Always a fresh sum, never an increment, so the cache cannot drift.
func (s *Service) recomputeTotal(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error {
	items, err := s.itemrepo.WithTrx(tx).Find(ctx, &invoicedomain.LineItem{InvoiceID: invoiceID})
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}

	return tx.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{
			"total_amount": total,
			"updated_at":   time.Now().UTC(),
		}).Error
}

type lineItemRow struct {
	ID              snowflake.ID
	ProductID       string
	ProductName     string
	ProductCategory string
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
}

// loadSnapshot builds the read view with explicit joins; nothing here
// relies on lazy relationship loading.
func (s *Service) loadSnapshot(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) (invoicedomain.InvoiceSnapshot, error) {
	invoice, err := s.invoicerepo.WithTrx(tx).FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.InvoiceSnapshot{}, err
	}
	if invoice == nil {
		return invoicedomain.InvoiceSnapshot{}, invoicedomain.ErrNotFound
	}

	customer, err := s.customerrepo.WithTrx(tx).FindOne(ctx, &customerdomain.Customer{ID: invoice.CustomerID})
	if err != nil {
		return invoicedomain.InvoiceSnapshot{}, err
	}

	var rows []lineItemRow
	err = tx.WithContext(ctx).
		Table("line_items").
		Select(`line_items.id, line_items.product_id, products.name AS product_name,
			products.category AS product_category, line_items.quantity,
			line_items.unit_price, line_items.total_price`).
		Joins("JOIN products ON products.id = line_items.product_id").
		Where("line_items.invoice_id = ?", invoiceID).
		Order("line_items.id").
		Scan(&rows).Error
	if err != nil {
		return invoicedomain.InvoiceSnapshot{}, err
	}

	items := make([]invoicedomain.LineItemSnapshot, 0, len(rows))
	for _, row := range rows {
		items = append(items, invoicedomain.LineItemSnapshot{
			ID:              row.ID,
			ProductID:       row.ProductID,
			ProductName:     row.ProductName,
			ProductCategory: row.ProductCategory,
			Quantity:        row.Quantity,
			UnitPrice:       row.UnitPrice,
			TotalPrice:      row.TotalPrice,
		})
	}

	snapshot := invoicedomain.InvoiceSnapshot{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID,
		DeliveryDate:  invoice.DeliveryDate,
		CreatedAt:     invoice.CreatedAt,
		Status:        invoice.Status,
		TotalAmount:   invoice.TotalAmount,
		Items:         items,
	}
	if customer != nil {
		snapshot.CustomerName = customer.Name
		snapshot.CustomerEmail = customer.Email
	}
	return snapshot, nil
}
