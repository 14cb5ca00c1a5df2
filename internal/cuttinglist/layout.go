// Package cuttinglist builds the delivery-day document handed to kitchen
// staff: every customer's products and quantities for one date, with
// invoice numbers kept visible for cross-reference.
package cuttinglist

import (
	"sort"
	"strconv"
)

// Row is one line of the fixed four-column cutting list document.
type Row struct {
	Label    string `json:"label"`
	Product  string `json:"product"`
	Quantity string `json:"quantity"`
	Spare    string `json:"spare"`
}

// ItemLine is one product entry of an invoice, already resolved to its
// display name.
type ItemLine struct {
	ProductName string
	Quantity    int
}

// InvoiceGroup is one invoice of a customer, items in stored order.
type InvoiceGroup struct {
	InvoiceNumber string
	Items         []ItemLine
}

// CustomerGroup is every invoice of one customer for the delivery date,
// in retrieval order.
type CustomerGroup struct {
	CustomerName string
	Invoices     []InvoiceGroup
}

// BuildRows lays the groups out into the document row sequence. Customer
// groups are emitted in ascending name order; within a group the rows
// interleave invoice numbers with the next invoice's lead product:
//
//	invoice 0: customer name + first item, continuation rows for the
//	  rest, then invoice 0's number paired with invoice 1's first item;
//	invoice 1: its remaining items, then its number alone;
//	invoice 2+: every item on its own row, then the number alone.
//
// Each group ends with one blank separator row. The function is pure;
// identical input always yields identical output.
func BuildRows(groups []CustomerGroup) []Row {
	sorted := make([]CustomerGroup, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CustomerName < sorted[j].CustomerName
	})

	var rows []Row
	for _, group := range sorted {
		rows = append(rows, buildCustomerRows(group)...)
	}
	return rows
}

func buildCustomerRows(group CustomerGroup) []Row {
	var rows []Row
	for idx, invoice := range group.Invoices {
		switch idx {
		case 0:
			if len(invoice.Items) > 0 {
				first := invoice.Items[0]
				rows = append(rows, Row{
					Label:    group.CustomerName,
					Product:  first.ProductName,
					Quantity: strconv.Itoa(first.Quantity),
				})
				for _, item := range invoice.Items[1:] {
					rows = append(rows, Row{
						Product:  item.ProductName,
						Quantity: strconv.Itoa(item.Quantity),
					})
				}
			}

			// The first invoice's number shares its row with the second
			// invoice's lead product, if there is a second invoice.
			secondLead := ""
			if len(group.Invoices) > 1 && len(group.Invoices[1].Items) > 0 {
				secondLead = group.Invoices[1].Items[0].ProductName
			}
			rows = append(rows, Row{
				Label:   invoice.InvoiceNumber,
				Product: secondLead,
			})
		case 1:
			// The lead item was already shown next to invoice 0's number.
			for i, item := range invoice.Items {
				if i == 0 {
					continue
				}
				rows = append(rows, Row{
					Product:  item.ProductName,
					Quantity: strconv.Itoa(item.Quantity),
				})
			}
			rows = append(rows, Row{Label: invoice.InvoiceNumber})
		default:
			for _, item := range invoice.Items {
				rows = append(rows, Row{
					Product:  item.ProductName,
					Quantity: strconv.Itoa(item.Quantity),
				})
			}
			rows = append(rows, Row{Label: invoice.InvoiceNumber})
		}
	}

	// Blank separator before the next customer.
	rows = append(rows, Row{})
	return rows
}
