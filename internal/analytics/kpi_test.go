package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"retailpulse/internal/dataset"
	"retailpulse/internal/filter"
)

func rec(invoice string, qty int64, price float64, ts time.Time, customer int64, country, product string) dataset.Record {
	r := dataset.Record{
		InvoiceNo:   invoice,
		StockCode:   "SC-" + product,
		Description: product,
		Quantity:    qty,
		InvoiceDate: ts,
		UnitPrice:   price,
		CustomerID:  customer,
		Country:     country,
	}
	r.ComputeDerived()
	return r
}

func viewOf(records ...dataset.Record) *filter.View {
	return filter.NewView(records)
}

func emptyView() *filter.View {
	return filter.NewView(nil)
}

func TestKPIs_AverageOrderValueGroupsByInvoice(t *testing.T) {
	ts := time.Date(2011, 3, 1, 10, 0, 0, 0, time.UTC)
	view := viewOf(
		rec("A", 2, 5.00, ts, 1, "France", "MUG"),     // 10
		rec("A", 1, 10.00, ts, 1, "France", "LANTERN"), // invoice A totals 20
		rec("B", 3, 5.00, ts, 2, "Germany", "MUG"),     // invoice B totals 15
	)

	kpis := KPIs(view)

	assert.True(t, kpis.HasData)
	assert.InDelta(t, 35.0, kpis.TotalRevenue, 1e-9)
	assert.InDelta(t, 35.0/3.0, kpis.MeanLineTotal, 1e-9)
	assert.InDelta(t, 17.5, kpis.AverageOrderValue, 1e-9)
	assert.Equal(t, 2, kpis.InvoiceCount)
	assert.Equal(t, 2, kpis.CustomerCount)
	assert.Equal(t, 2, kpis.ProductCount)
	assert.Equal(t, 2, kpis.CountryCount)
	assert.Equal(t, int64(6), kpis.TotalQuantity)
	assert.Equal(t, 3, kpis.RecordCount)
}

func TestKPIs_ProductCountByStockCode(t *testing.T) {
	ts := time.Date(2011, 3, 1, 10, 0, 0, 0, time.UTC)
	code := func(invoice, stock, desc string) dataset.Record {
		r := dataset.Record{
			InvoiceNo:   invoice,
			StockCode:   stock,
			Description: desc,
			Quantity:    1,
			InvoiceDate: ts,
			UnitPrice:   1.00,
			CustomerID:  1,
			Country:     "UK",
		}
		r.ComputeDerived()
		return r
	}

	// Two stock codes sharing one description are two products.
	kpis := KPIs(viewOf(
		code("A", "85123A", "MUG"),
		code("A", "85123B", "MUG"),
	))
	assert.Equal(t, 2, kpis.ProductCount)

	// One stock code listed under two descriptions is one product.
	kpis = KPIs(viewOf(
		code("A", "85123A", "MUG"),
		code("A", "85123A", "MUG RED"),
	))
	assert.Equal(t, 1, kpis.ProductCount)
}

func TestKPIs_EmptyView(t *testing.T) {
	kpis := KPIs(emptyView())

	assert.False(t, kpis.HasData)
	assert.Zero(t, kpis.TotalRevenue)
	assert.Zero(t, kpis.MeanLineTotal)
	assert.Zero(t, kpis.AverageOrderValue)
	assert.Zero(t, kpis.InvoiceCount)
}
