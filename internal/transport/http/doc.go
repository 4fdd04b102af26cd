// Package http serves the aggregation catalog to the rendering layer
// as a JSON API, plus the CSV download and health endpoints.
package http
