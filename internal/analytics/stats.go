package analytics

import (
	"math"
	"sort"

	"retailpulse/internal/filter"
)

// FieldStats is the describe() row for one numeric field. Std is the
// sample standard deviation and is zero for fewer than two values.
type FieldStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Summary bundles descriptive statistics for the three numeric fields
// of the table.
type Summary struct {
	HasData   bool       `json:"has_data"`
	Quantity  FieldStats `json:"quantity"`
	UnitPrice FieldStats `json:"unit_price"`
	Total     FieldStats `json:"total"`
}

// Describe computes per-field descriptive statistics over a view.
func Describe(view *filter.View) Summary {
	if view.Empty() {
		return Summary{}
	}

	records := view.Records()
	quantities := make([]float64, len(records))
	prices := make([]float64, len(records))
	totals := make([]float64, len(records))
	for i := range records {
		quantities[i] = float64(records[i].Quantity)
		prices[i] = records[i].UnitPrice
		totals[i] = records[i].Total
	}

	return Summary{
		HasData:   true,
		Quantity:  fieldStats(quantities),
		UnitPrice: fieldStats(prices),
		Total:     fieldStats(totals),
	}
}

func fieldStats(values []float64) FieldStats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var std float64
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			d := v - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(len(sorted)-1))
	}

	return FieldStats{
		Count:  len(sorted),
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.50),
		Q75:    quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly between the two nearest order
// statistics. Input must be sorted and non-empty.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
