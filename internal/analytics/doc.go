// Package analytics computes the aggregation catalog served to the
// rendering layer: KPI bundle, revenue time series, top-N rankings,
// the weekday-hour heatmap, histograms, and descriptive statistics.
// Every function takes a filtered view and returns explicit no-data
// results for empty views, never NaN and never a panic.
package analytics
