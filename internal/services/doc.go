// Package services orchestrates the domain packages behind the HTTP
// handlers: dataset loading through the store cache, filter
// evaluation, the aggregation catalog, and CSV export.
package services
