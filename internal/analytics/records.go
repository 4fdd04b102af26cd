package analytics

import (
	"sort"

	"retailpulse/internal/dataset"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/filter"
)

// SortColumn names a sortable column of the detail table.
type SortColumn string

const (
	SortByInvoiceDate SortColumn = "invoice_date"
	SortByTotal       SortColumn = "total"
	SortByQuantity    SortColumn = "quantity"
	SortByCountry     SortColumn = "country"
)

// SortRecords returns the view's records ordered by the given column,
// truncated to limit rows. A non-positive limit returns every row.
// The sort is stable, so equal keys keep store order.
func SortRecords(view *filter.View, column SortColumn, descending bool, limit int) ([]dataset.Record, error) {
	var less func(a, b *dataset.Record) bool
	switch column {
	case SortByInvoiceDate:
		less = func(a, b *dataset.Record) bool { return a.InvoiceDate.Before(b.InvoiceDate) }
	case SortByTotal:
		less = func(a, b *dataset.Record) bool { return a.Total < b.Total }
	case SortByQuantity:
		less = func(a, b *dataset.Record) bool { return a.Quantity < b.Quantity }
	case SortByCountry:
		less = func(a, b *dataset.Record) bool { return a.Country < b.Country }
	default:
		return nil, apierrors.InvalidParameterError("sort", "must be one of invoice_date, total, quantity, country")
	}

	records := make([]dataset.Record, view.Len())
	copy(records, view.Records())
	sort.SliceStable(records, func(i, j int) bool {
		if descending {
			return less(&records[j], &records[i])
		}
		return less(&records[i], &records[j])
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
