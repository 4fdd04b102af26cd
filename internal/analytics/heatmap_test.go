package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayHourHeatmap(t *testing.T) {
	view := viewOf(
		rec("A", 1, 10.00, time.Date(2011, 3, 7, 9, 0, 0, 0, time.UTC), 1, "UK", "MUG"),  // Monday 09
		rec("B", 1, 5.00, time.Date(2011, 3, 7, 9, 30, 0, 0, time.UTC), 1, "UK", "MUG"),  // Monday 09
		rec("C", 1, 3.00, time.Date(2011, 3, 13, 15, 0, 0, 0, time.UTC), 1, "UK", "MUG"), // Sunday 15
	)

	h := WeekdayHourHeatmap(view)

	assert.Equal(t, "Monday", h.Weekdays[0])
	assert.Equal(t, "Sunday", h.Weekdays[6])
	assert.InDelta(t, 15.0, h.Revenue[0][9], 1e-9)
	assert.InDelta(t, 3.0, h.Revenue[6][15], 1e-9)
	assert.Zero(t, h.Revenue[3][12])
}

func TestWeekdayHourHeatmap_EmptyView(t *testing.T) {
	h := WeekdayHourHeatmap(emptyView())

	assert.Len(t, h.Weekdays, 7)
	for _, row := range h.Revenue {
		for _, cell := range row {
			assert.Zero(t, cell)
		}
	}
}
