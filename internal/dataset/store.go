package dataset

import (
	"sort"
	"time"
)

// Store owns the cleaned, typed, feature-augmented transaction table.
// It is immutable after construction and safe for concurrent readers.
type Store struct {
	source   string
	loadedAt time.Time
	records  []Record

	minDate   time.Time
	maxDate   time.Time
	countries []string
	products  []string
}

// NewStore builds a store over the given cleaned records. The slice is
// owned by the store afterwards; callers must not mutate it.
func NewStore(source string, records []Record) *Store {
	s := &Store{
		source:   source,
		loadedAt: time.Now(),
		records:  records,
	}

	countrySet := make(map[string]struct{})
	productSet := make(map[string]struct{})
	for i := range records {
		r := &records[i]
		if s.minDate.IsZero() || r.Date.Before(s.minDate) {
			s.minDate = r.Date
		}
		if s.maxDate.IsZero() || r.Date.After(s.maxDate) {
			s.maxDate = r.Date
		}
		countrySet[r.Country] = struct{}{}
		productSet[r.Description] = struct{}{}
	}

	s.countries = sortedKeys(countrySet)
	s.products = sortedKeys(productSet)
	return s
}

// Source returns the identity of the input this store was built from.
func (s *Store) Source() string { return s.source }

// LoadedAt returns the time the store was constructed.
func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of records in the store.
func (s *Store) Len() int { return len(s.records) }

// Records exposes the full record slice. Read-only by contract; the
// store is shared across requests without locking.
func (s *Store) Records() []Record { return s.records }

// DateSpan returns the earliest and latest plain dates in the store.
// Both are zero for an empty store.
func (s *Store) DateSpan() (time.Time, time.Time) { return s.minDate, s.maxDate }

// Countries returns the sorted distinct country names.
func (s *Store) Countries() []string { return s.countries }

// Products returns the sorted distinct product descriptions.
func (s *Store) Products() []string { return s.products }

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
