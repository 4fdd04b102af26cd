package analytics

import (
	"retailpulse/internal/filter"
)

// Heatmap is the complete weekday-by-hour revenue grid. Rows follow
// weekdayOrder (Monday first), columns are hours 0 through 23. Cells
// with no transactions stay zero, so the grid shape is stable for any
// view including the empty one.
type Heatmap struct {
	Weekdays []string       `json:"weekdays"`
	Revenue  [7][24]float64 `json:"revenue"`
}

// WeekdayHourHeatmap sums revenue into the 7x24 grid.
func WeekdayHourHeatmap(view *filter.View) Heatmap {
	rowIndex := make(map[string]int, len(weekdayOrder))
	weekdays := make([]string, len(weekdayOrder))
	for i, day := range weekdayOrder {
		rowIndex[day.String()] = i
		weekdays[i] = day.String()
	}

	h := Heatmap{Weekdays: weekdays}
	for _, r := range view.Records() {
		if r.Hour < 0 || r.Hour >= 24 {
			continue
		}
		h.Revenue[rowIndex[r.Weekday]][r.Hour] += r.Total
	}
	return h
}
