package analytics

import (
	"retailpulse/internal/filter"
)

// KPIBundle is the headline metric row of the dashboard. HasData is
// false for an empty view; all numeric fields are zero in that case.
type KPIBundle struct {
	HasData           bool    `json:"has_data"`
	TotalRevenue      float64 `json:"total_revenue"`
	MeanLineTotal     float64 `json:"mean_line_total"`
	AverageOrderValue float64 `json:"average_order_value"`
	TotalQuantity     int64   `json:"total_quantity"`
	RecordCount       int     `json:"record_count"`
	InvoiceCount      int     `json:"invoice_count"`
	CustomerCount     int     `json:"customer_count"`
	ProductCount      int     `json:"product_count"` // distinct stock codes
	CountryCount      int     `json:"country_count"`
}

// KPIs computes the headline metrics over a view.
//
// AverageOrderValue is the mean of per-invoice summed totals, not the
// mean line total: an invoice with ten lines counts once.
func KPIs(view *filter.View) KPIBundle {
	if view.Empty() {
		return KPIBundle{}
	}

	var (
		revenue       float64
		quantity      int64
		invoiceTotals = make(map[string]float64)
		customers     = make(map[int64]struct{})
		products      = make(map[string]struct{})
		countries     = make(map[string]struct{})
	)

	records := view.Records()
	for i := range records {
		r := &records[i]
		revenue += r.Total
		quantity += r.Quantity
		invoiceTotals[r.InvoiceNo] += r.Total
		customers[r.CustomerID] = struct{}{}
		products[r.StockCode] = struct{}{}
		countries[r.Country] = struct{}{}
	}

	var orderSum float64
	for _, total := range invoiceTotals {
		orderSum += total
	}

	return KPIBundle{
		HasData:           true,
		TotalRevenue:      revenue,
		MeanLineTotal:     revenue / float64(len(records)),
		AverageOrderValue: orderSum / float64(len(invoiceTotals)),
		TotalQuantity:     quantity,
		RecordCount:       len(records),
		InvoiceCount:      len(invoiceTotals),
		CustomerCount:     len(customers),
		ProductCount:      len(products),
		CountryCount:      len(countries),
	}
}
