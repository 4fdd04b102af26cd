package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/dataset"
	apierrors "retailpulse/internal/errors"
)

func ptr[T any](v T) *T { return &v }

func testStore() *dataset.Store {
	mk := func(invoice string, qty int64, price float64, ts time.Time, customer int64, country, product string) dataset.Record {
		r := dataset.Record{
			InvoiceNo:   invoice,
			StockCode:   "SC",
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
	return dataset.NewStore("test", []dataset.Record{
		mk("A1", 2, 5.00, time.Date(2010, 12, 1, 8, 0, 0, 0, time.UTC), 1, "United Kingdom", "MUG"),
		mk("A2", 10, 1.00, time.Date(2010, 12, 15, 12, 0, 0, 0, time.UTC), 2, "France", "LANTERN"),
		mk("A3", 1, 100.00, time.Date(2011, 1, 10, 16, 0, 0, 0, time.UTC), 1, "Germany", "CLOCK"),
		mk("A4", 5, 2.00, time.Date(2011, 2, 28, 9, 0, 0, 0, time.UTC), 3, "France", "MUG"),
	})
}

func invoices(v *View) []string {
	out := make([]string, 0, v.Len())
	for _, r := range v.Records() {
		out = append(out, r.InvoiceNo)
	}
	return out
}

func TestApply_AllInclusive(t *testing.T) {
	engine := NewEngine(nil)
	store := testStore()

	view := engine.Apply(store, Params{})

	assert.Equal(t, store.Len(), view.Len())
	assert.False(t, view.Empty())
	assert.Equal(t, store.Len(), view.StoreLen())
}

func TestApply_DateBoundsInclusive(t *testing.T) {
	engine := NewEngine(nil)

	view := engine.Apply(testStore(), Params{
		DateFrom: ptr(time.Date(2010, 12, 15, 0, 0, 0, 0, time.UTC)),
		DateTo:   ptr(time.Date(2011, 1, 10, 0, 0, 0, 0, time.UTC)),
	})

	assert.Equal(t, []string{"A2", "A3"}, invoices(view))
}

func TestApply_DateBoundIgnoresTimeOfDay(t *testing.T) {
	engine := NewEngine(nil)

	// A bound at 23:59 still admits records from earlier that day.
	view := engine.Apply(testStore(), Params{
		DateFrom: ptr(time.Date(2011, 2, 28, 23, 59, 0, 0, time.UTC)),
	})

	assert.Equal(t, []string{"A4"}, invoices(view))
}

func TestApply_Countries(t *testing.T) {
	engine := NewEngine(nil)

	view := engine.Apply(testStore(), Params{Countries: []string{"France"}})
	assert.Equal(t, []string{"A2", "A4"}, invoices(view))

	// Empty slice means no restriction.
	all := engine.Apply(testStore(), Params{Countries: nil})
	assert.Equal(t, 4, all.Len())
}

func TestApply_ProductFilterStates(t *testing.T) {
	engine := NewEngine(nil)
	store := testStore()

	inactive := engine.Apply(store, Params{Products: ProductFilter{Active: false}})
	assert.Equal(t, 4, inactive.Len())

	activeEmpty := engine.Apply(store, Params{Products: ProductFilter{Active: true}})
	assert.True(t, activeEmpty.Empty())

	selected := engine.Apply(store, Params{Products: ProductFilter{Active: true, Selected: []string{"MUG"}}})
	assert.Equal(t, []string{"A1", "A4"}, invoices(selected))
}

func TestApply_NumericRanges(t *testing.T) {
	engine := NewEngine(nil)

	byTotal := engine.Apply(testStore(), Params{TotalMin: ptr(10.0), TotalMax: ptr(100.0)})
	assert.Equal(t, []string{"A1", "A2", "A3", "A4"}, invoices(byTotal))

	byQty := engine.Apply(testStore(), Params{QuantityMin: ptr(int64(5))})
	assert.Equal(t, []string{"A2", "A4"}, invoices(byQty))
}

func TestApply_PredicatesAreConjunctive(t *testing.T) {
	engine := NewEngine(nil)

	view := engine.Apply(testStore(), Params{
		Countries:   []string{"France"},
		QuantityMin: ptr(int64(6)),
	})

	assert.Equal(t, []string{"A2"}, invoices(view))
}

func TestApply_Idempotent(t *testing.T) {
	engine := NewEngine(nil)
	params := Params{Countries: []string{"France"}, TotalMax: ptr(10.5)}

	once := engine.Apply(testStore(), params)
	again := engine.Apply(dataset.NewStore("again", once.Records()), params)

	assert.Equal(t, invoices(once), invoices(again))
}

func TestApply_SubsetOfStore(t *testing.T) {
	engine := NewEngine(nil)
	store := testStore()

	view := engine.Apply(store, Params{TotalMin: ptr(11.0)})

	assert.LessOrEqual(t, view.Len(), store.Len())
	byInvoice := make(map[string]bool)
	for _, r := range store.Records() {
		byInvoice[r.InvoiceNo] = true
	}
	for _, r := range view.Records() {
		assert.True(t, byInvoice[r.InvoiceNo])
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"empty", Params{}, false},
		{"ordered dates", Params{DateFrom: ptr(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)), DateTo: ptr(time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC))}, false},
		{"inverted dates", Params{DateFrom: ptr(time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)), DateTo: ptr(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))}, true},
		{"inverted total", Params{TotalMin: ptr(100.0), TotalMax: ptr(1.0)}, true},
		{"inverted quantity", Params{QuantityMin: ptr(int64(50)), QuantityMax: ptr(int64(5))}, true},
		{"single bound", Params{TotalMin: ptr(100.0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, 400, apiErr.StatusCode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
