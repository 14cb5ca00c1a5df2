package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	invoicedomain "github.com/smallbiznis/meatline/internal/invoice/domain"
	"gorm.io/gorm"
)

const (
	numberPrefix = "INV"
	// sequenceMax is the highest per-day sequence the 4-digit field can
	// hold. Past it the generator fails rather than widening or wrapping.
	sequenceMax = 9999
)

// nextInvoiceNumberTx derives the next number in the INV-YYYYMMDD-NNNN
// scheme by scanning the highest existing number for the day. Must run
// inside the same transaction that inserts the invoice, otherwise two
// writers can derive the same sequence.
func nextInvoiceNumberTx(ctx context.Context, tx *gorm.DB, date time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", numberPrefix, invoicedomain.DateOnly(date).Format("20060102"))

	var last string
	err := tx.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &last).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		tail := last[strings.LastIndex(last, "-")+1:]
		parsed, err := strconv.Atoi(tail)
		if err != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", last, err)
		}
		seq = parsed + 1
	}
	if seq > sequenceMax {
		return "", invoicedomain.ErrSequenceExhausted
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
