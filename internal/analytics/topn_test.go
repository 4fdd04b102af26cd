package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopProducts_OrderAndTruncation(t *testing.T) {
	ts := time.Date(2011, 3, 1, 10, 0, 0, 0, time.UTC)
	view := viewOf(
		rec("A", 1, 5.00, ts, 1, "UK", "MUG"),
		rec("B", 1, 20.00, ts, 1, "UK", "CLOCK"),
		rec("C", 1, 10.00, ts, 1, "UK", "LANTERN"),
		rec("D", 1, 5.00, ts, 1, "UK", "MUG"), // MUG now 10 total
	)

	top, err := TopProducts(view, 2)
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, "CLOCK", top[0].Label)
	assert.InDelta(t, 20.0, top[0].Revenue, 1e-9)
	// MUG and LANTERN tie at 10; MUG was seen first.
	assert.Equal(t, "MUG", top[1].Label)
}

func TestTopProducts_FewerGroupsThanN(t *testing.T) {
	ts := time.Date(2011, 3, 1, 10, 0, 0, 0, time.UTC)
	view := viewOf(rec("A", 1, 5.00, ts, 1, "UK", "MUG"))

	top, err := TopProducts(view, 10)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestTopProducts_InvalidN(t *testing.T) {
	_, err := TopProducts(emptyView(), 0)
	assert.Error(t, err)

	_, err = TopProducts(emptyView(), -3)
	assert.Error(t, err)
}

func TestTopCountries(t *testing.T) {
	ts := time.Date(2011, 3, 1, 10, 0, 0, 0, time.UTC)
	view := viewOf(
		rec("A", 1, 5.00, ts, 1, "France", "MUG"),
		rec("B", 1, 50.00, ts, 2, "Germany", "MUG"),
		rec("C", 1, 10.00, ts, 3, "France", "MUG"),
	)

	top, err := TopCountries(view, 5)
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, "Germany", top[0].Label)
	assert.Equal(t, "France", top[1].Label)
	assert.InDelta(t, 15.0, top[1].Revenue, 1e-9)
}

func TestTopCustomers_IndependentRankings(t *testing.T) {
	ts := time.Date(2011, 3, 1, 10, 0, 0, 0, time.UTC)
	// Customer 1: one big invoice. Customer 2: three small invoices.
	view := viewOf(
		rec("A", 1, 100.00, ts, 1, "UK", "MUG"),
		rec("B", 1, 1.00, ts, 2, "UK", "MUG"),
		rec("C", 1, 1.00, ts, 2, "UK", "MUG"),
		rec("D", 1, 1.00, ts, 2, "UK", "MUG"),
	)

	result, err := TopCustomers(view, 2)
	require.NoError(t, err)

	require.Len(t, result.ByRevenue, 2)
	assert.Equal(t, int64(1), result.ByRevenue[0].CustomerID)
	assert.InDelta(t, 100.0, result.ByRevenue[0].Revenue, 1e-9)

	require.Len(t, result.ByInvoices, 2)
	assert.Equal(t, int64(2), result.ByInvoices[0].CustomerID)
	assert.Equal(t, 3, result.ByInvoices[0].InvoiceCount)
}

func TestTopCustomers_DistinctInvoiceCount(t *testing.T) {
	ts := time.Date(2011, 3, 1, 10, 0, 0, 0, time.UTC)
	// Two lines on the same invoice count as one order.
	view := viewOf(
		rec("A", 1, 5.00, ts, 1, "UK", "MUG"),
		rec("A", 1, 5.00, ts, 1, "UK", "CLOCK"),
	)

	result, err := TopCustomers(view, 1)
	require.NoError(t, err)

	require.Len(t, result.ByInvoices, 1)
	assert.Equal(t, 1, result.ByInvoices[0].InvoiceCount)
}

func TestTopCustomers_EmptyView(t *testing.T) {
	result, err := TopCustomers(emptyView(), 10)
	require.NoError(t, err)
	assert.Empty(t, result.ByRevenue)
	assert.Empty(t, result.ByInvoices)
}
