package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkRecord(invoice string, qty int64, price float64, ts time.Time, customer int64, country, description string) Record {
	r := Record{
		InvoiceNo:   invoice,
		StockCode:   "SC-" + invoice,
		Description: description,
		Quantity:    qty,
		InvoiceDate: ts,
		UnitPrice:   price,
		CustomerID:  customer,
		Country:     country,
	}
	r.ComputeDerived()
	return r
}

func TestRecord_ComputeDerived(t *testing.T) {
	ts := time.Date(2011, time.March, 14, 15, 26, 0, 0, time.UTC)
	r := mkRecord("536365", 6, 2.55, ts, 17850, "United Kingdom", "WHITE HANGING HEART T-LIGHT HOLDER")

	assert.InDelta(t, 15.30, r.Total, 1e-9)
	assert.Equal(t, 2011, r.Year)
	assert.Equal(t, 3, r.Month)
	assert.Equal(t, "March", r.MonthName)
	assert.Equal(t, 14, r.Day)
	assert.Equal(t, 15, r.Hour)
	assert.Equal(t, "Monday", r.Weekday)
	assert.Equal(t, time.Date(2011, time.March, 14, 0, 0, 0, 0, time.UTC), r.Date)
}

func TestNewStore_Metadata(t *testing.T) {
	records := []Record{
		mkRecord("A", 1, 1, time.Date(2011, 1, 5, 10, 0, 0, 0, time.UTC), 1, "France", "MUG"),
		mkRecord("B", 2, 2, time.Date(2010, 12, 1, 8, 0, 0, 0, time.UTC), 2, "Germany", "LANTERN"),
		mkRecord("C", 3, 3, time.Date(2011, 2, 20, 17, 0, 0, 0, time.UTC), 3, "France", "MUG"),
	}
	store := NewStore("retail.xlsx", records)

	assert.Equal(t, 3, store.Len())
	minDate, maxDate := store.DateSpan()
	assert.Equal(t, time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC), minDate)
	assert.Equal(t, time.Date(2011, 2, 20, 0, 0, 0, 0, time.UTC), maxDate)
	assert.Equal(t, []string{"France", "Germany"}, store.Countries())
	assert.Equal(t, []string{"LANTERN", "MUG"}, store.Products())
	assert.Equal(t, "retail.xlsx", store.Source())
}

func TestNewStore_Empty(t *testing.T) {
	store := NewStore("empty.xlsx", nil)

	assert.Equal(t, 0, store.Len())
	minDate, maxDate := store.DateSpan()
	assert.True(t, minDate.IsZero())
	assert.True(t, maxDate.IsZero())
	assert.Empty(t, store.Countries())
}

func TestStoreCache_LoadOnce(t *testing.T) {
	cache := NewStoreCache(nil)
	var calls atomic.Int32

	load := func(ctx context.Context) (*Store, error) {
		calls.Add(1)
		return NewStore("k", nil), nil
	}

	first, err := cache.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)
	second, err := cache.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStoreCache_ConcurrentLoadsDeduplicated(t *testing.T) {
	cache := NewStoreCache(nil)
	var calls atomic.Int32

	load := func(ctx context.Context) (*Store, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return NewStore("k", nil), nil
	}

	var wg sync.WaitGroup
	stores := make([]*Store, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := cache.GetOrLoad(context.Background(), "k", load)
			require.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 1; i < 8; i++ {
		assert.Same(t, stores[0], stores[i])
	}
}

func TestStoreCache_DistinctKeys(t *testing.T) {
	cache := NewStoreCache(nil)

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("source-%d", i)
		_, err := cache.GetOrLoad(context.Background(), key, func(ctx context.Context) (*Store, error) {
			return NewStore(key, nil), nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, cache.Len())
}

func TestStoreCache_FailedLoadNotCached(t *testing.T) {
	cache := NewStoreCache(nil)
	var calls atomic.Int32

	fail := func(ctx context.Context) (*Store, error) {
		calls.Add(1)
		return nil, errors.New("parse failed")
	}

	_, err := cache.GetOrLoad(context.Background(), "k", fail)
	require.Error(t, err)

	_, ok := cache.Get("k")
	assert.False(t, ok)

	// A later load may succeed.
	store, err := cache.GetOrLoad(context.Background(), "k", func(ctx context.Context) (*Store, error) {
		return NewStore("k", nil), nil
	})
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Equal(t, int32(1), calls.Load())
}
