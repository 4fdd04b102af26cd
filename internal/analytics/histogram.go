package analytics

import (
	"strconv"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/filter"
)

// HistogramField selects which record value the histogram bins.
type HistogramField string

const (
	FieldTotal    HistogramField = "total"
	FieldQuantity HistogramField = "quantity"
)

// Bin is one histogram bucket. Lo is inclusive; Hi is exclusive
// except for the last bin, which includes its upper edge.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram is a fixed-bin distribution over values at or below the
// cutoff. Values above the cutoff are excluded from the bins entirely,
// not clipped into the last one; Excluded counts them.
type Histogram struct {
	Field    HistogramField `json:"field"`
	Cutoff   float64        `json:"cutoff"`
	Included int            `json:"included"`
	Excluded int            `json:"excluded"`
	Bins     []Bin          `json:"bins"`
}

// HistogramOf bins the chosen field over [min included value, cutoff]
// into the given number of equal-width bins.
func HistogramOf(view *filter.View, field HistogramField, cutoff float64, bins int) (Histogram, error) {
	if bins <= 0 {
		return Histogram{}, apierrors.InvalidParameterError("bins", "must be positive, got "+strconv.Itoa(bins))
	}

	var extract func(i int) float64
	records := view.Records()
	switch field {
	case FieldTotal:
		extract = func(i int) float64 { return records[i].Total }
	case FieldQuantity:
		extract = func(i int) float64 { return float64(records[i].Quantity) }
	default:
		return Histogram{}, apierrors.InvalidParameterError("field", "must be total or quantity")
	}

	h := Histogram{Field: field, Cutoff: cutoff}

	var values []float64
	for i := range records {
		v := extract(i)
		if v > cutoff {
			h.Excluded++
			continue
		}
		values = append(values, v)
	}
	h.Included = len(values)
	if len(values) == 0 {
		return h, nil
	}

	lo := values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
	}

	if lo == cutoff {
		// Degenerate range: every value is identical, one bin holds
		// them all.
		h.Bins = []Bin{{Lo: lo, Hi: cutoff, Count: len(values)}}
		return h, nil
	}

	width := (cutoff - lo) / float64(bins)
	h.Bins = make([]Bin, bins)
	for i := range h.Bins {
		h.Bins[i].Lo = lo + float64(i)*width
		h.Bins[i].Hi = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Hi = cutoff

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		h.Bins[idx].Count++
	}
	return h, nil
}
