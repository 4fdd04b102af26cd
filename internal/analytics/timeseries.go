package analytics

import (
	"sort"
	"time"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/filter"
)

// Granularity selects how the revenue series buckets time.
type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityHour    Granularity = "hour"
	GranularityWeekday Granularity = "weekday"
	GranularityDate    Granularity = "date"
)

// SeriesPoint is one bucket of the revenue series.
type SeriesPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// weekdayOrder starts the week on Monday, matching how the trading
// week reads on the dashboard.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// RevenueSeries sums revenue per time bucket.
//
// Weekday always emits exactly 7 points Monday through Sunday,
// zero-filled. Month emits observed months in calendar order January
// through December. Hour and Date emit observed buckets ascending.
func RevenueSeries(view *filter.View, granularity Granularity) ([]SeriesPoint, error) {
	switch granularity {
	case GranularityMonth:
		return monthSeries(view), nil
	case GranularityHour:
		return hourSeries(view), nil
	case GranularityWeekday:
		return weekdaySeries(view), nil
	case GranularityDate:
		return dateSeries(view), nil
	default:
		return nil, apierrors.InvalidParameterError("granularity", "must be one of month, hour, weekday, date")
	}
}

func monthSeries(view *filter.View) []SeriesPoint {
	sums := make(map[int]float64)
	for _, r := range view.Records() {
		sums[r.Month] += r.Total
	}

	points := make([]SeriesPoint, 0, len(sums))
	for m := 1; m <= 12; m++ {
		if sum, ok := sums[m]; ok {
			points = append(points, SeriesPoint{Label: time.Month(m).String(), Revenue: sum})
		}
	}
	return points
}

func hourSeries(view *filter.View) []SeriesPoint {
	sums := make(map[int]float64)
	for _, r := range view.Records() {
		sums[r.Hour] += r.Total
	}

	points := make([]SeriesPoint, 0, len(sums))
	for h := 0; h < 24; h++ {
		if sum, ok := sums[h]; ok {
			points = append(points, SeriesPoint{Label: hourLabel(h), Revenue: sum})
		}
	}
	return points
}

func weekdaySeries(view *filter.View) []SeriesPoint {
	sums := make(map[string]float64)
	for _, r := range view.Records() {
		sums[r.Weekday] += r.Total
	}

	points := make([]SeriesPoint, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		points = append(points, SeriesPoint{Label: day.String(), Revenue: sums[day.String()]})
	}
	return points
}

func dateSeries(view *filter.View) []SeriesPoint {
	sums := make(map[string]float64)
	for _, r := range view.Records() {
		sums[r.Date.Format("2006-01-02")] += r.Total
	}

	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	points := make([]SeriesPoint, 0, len(labels))
	for _, label := range labels {
		points = append(points, SeriesPoint{Label: label, Revenue: sums[label]})
	}
	return points
}

func hourLabel(h int) string {
	return time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format("15:00")
}
