// Package ingest loads the raw transaction table from an Excel
// workbook or a flat CSV file and runs the cleaning and feature
// pipeline that turns raw rows into dataset records.
package ingest
