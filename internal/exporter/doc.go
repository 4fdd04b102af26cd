// Package exporter writes filtered views as CSV, both to disk and to
// HTTP response streams. The column layout round-trips through the
// ingest CSV loader.
package exporter
