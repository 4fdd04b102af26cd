package filter

import (
	"log/slog"
	"time"

	"retailpulse/internal/dataset"
)

// View is the outcome of applying params to a store: the matching
// records in store order. An empty view is a valid result and keeps
// its meaning distinct from "no store loaded".
type View struct {
	records []dataset.Record
	total   int
}

// Records returns the matching records. Read-only by contract.
func (v *View) Records() []dataset.Record { return v.records }

// Len returns the number of matching records.
func (v *View) Len() int { return len(v.records) }

// Empty reports whether no records matched.
func (v *View) Empty() bool { return len(v.records) == 0 }

// StoreLen returns the size of the store the view was cut from.
func (v *View) StoreLen() int { return v.total }

// NewView wraps an explicit record slice; used by tests and the
// full-table export path.
func NewView(records []dataset.Record) *View {
	return &View{records: records, total: len(records)}
}

// Engine evaluates predicate sets against a store.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a filter engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "filter_engine"))}
}

// Apply evaluates params against every record in the store. Params
// must already be validated; Apply itself never fails, it only
// produces a possibly empty view.
func (e *Engine) Apply(store *dataset.Store, params Params) *View {
	started := time.Now()
	match := compile(params)

	records := store.Records()
	matched := make([]dataset.Record, 0, len(records))
	for i := range records {
		if match(&records[i]) {
			matched = append(matched, records[i])
		}
	}

	e.logger.Debug("filter applied",
		slog.Int("store_rows", len(records)),
		slog.Int("matched_rows", len(matched)),
		slog.Duration("elapsed", time.Since(started)))

	return &View{records: matched, total: len(records)}
}

type predicate func(*dataset.Record) bool

// compile builds one combined predicate. Each clause only costs when
// its parameter is set, so the all-inclusive params reduce to a
// constant true.
func compile(p Params) predicate {
	var preds []predicate

	if p.DateFrom != nil {
		from := dayStart(*p.DateFrom)
		preds = append(preds, func(r *dataset.Record) bool { return !r.Date.Before(from) })
	}
	if p.DateTo != nil {
		to := dayStart(*p.DateTo)
		preds = append(preds, func(r *dataset.Record) bool { return !r.Date.After(to) })
	}
	if len(p.Countries) > 0 {
		set := stringSet(p.Countries)
		preds = append(preds, func(r *dataset.Record) bool { _, ok := set[r.Country]; return ok })
	}
	if p.Products.Active {
		set := stringSet(p.Products.Selected)
		preds = append(preds, func(r *dataset.Record) bool { _, ok := set[r.Description]; return ok })
	}
	if p.TotalMin != nil {
		min := *p.TotalMin
		preds = append(preds, func(r *dataset.Record) bool { return r.Total >= min })
	}
	if p.TotalMax != nil {
		max := *p.TotalMax
		preds = append(preds, func(r *dataset.Record) bool { return r.Total <= max })
	}
	if p.QuantityMin != nil {
		min := *p.QuantityMin
		preds = append(preds, func(r *dataset.Record) bool { return r.Quantity >= min })
	}
	if p.QuantityMax != nil {
		max := *p.QuantityMax
		preds = append(preds, func(r *dataset.Record) bool { return r.Quantity <= max })
	}

	return func(r *dataset.Record) bool {
		for _, pred := range preds {
			if !pred(r) {
				return false
			}
		}
		return true
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
