package ingest

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"retailpulse/internal/dataset"
)

// CleanStats counts what each cleaning rule removed. Rules are applied
// in order, so each row is counted against the first rule it fails.
type CleanStats struct {
	InputRows          int `json:"input_rows"`
	MissingCustomer    int `json:"missing_customer"`
	MissingDescription int `json:"missing_description"`
	NonPositiveQty     int `json:"non_positive_quantity"`
	NonPositivePrice   int `json:"non_positive_price"`
	OutputRows         int `json:"output_rows"`
}

// Dropped returns the total number of removed rows.
func (s CleanStats) Dropped() int {
	return s.InputRows - s.OutputRows
}

// Clean applies the cleaning rules to raw rows and computes the
// derived features. Rows failing a drop rule are removed and counted;
// an unparseable timestamp, quantity, price, or customer id aborts the
// load with a SchemaError.
func Clean(rows []RawRow) ([]dataset.Record, CleanStats, error) {
	stats := CleanStats{InputRows: len(rows)}
	records := make([]dataset.Record, 0, len(rows))

	for _, row := range rows {
		if row.CustomerID == "" {
			stats.MissingCustomer++
			continue
		}
		if row.Description == "" {
			stats.MissingDescription++
			continue
		}

		qty, err := parseCount(row.Quantity)
		if err != nil {
			return nil, stats, &SchemaError{Row: row.Line, Column: "Quantity", Value: row.Quantity, Reason: "not an integer"}
		}
		if qty <= 0 {
			stats.NonPositiveQty++
			continue
		}

		price, err := parseAmount(row.UnitPrice)
		if err != nil {
			return nil, stats, &SchemaError{Row: row.Line, Column: "UnitPrice", Value: row.UnitPrice, Reason: "not a number"}
		}
		if price <= 0 {
			stats.NonPositivePrice++
			continue
		}

		ts, err := parseTimestamp(row.InvoiceDate)
		if err != nil {
			return nil, stats, &SchemaError{Row: row.Line, Column: "InvoiceDate", Value: row.InvoiceDate, Reason: "unparseable timestamp"}
		}

		customer, err := parseCount(row.CustomerID)
		if err != nil {
			return nil, stats, &SchemaError{Row: row.Line, Column: "CustomerID", Value: row.CustomerID, Reason: "not an integer"}
		}

		rec := dataset.Record{
			InvoiceNo:   row.InvoiceNo,
			StockCode:   row.StockCode,
			Description: row.Description,
			Quantity:    qty,
			InvoiceDate: ts,
			UnitPrice:   price,
			CustomerID:  customer,
			Country:     row.Country,
		}
		rec.ComputeDerived()
		records = append(records, rec)
	}

	stats.OutputRows = len(records)
	slog.Info("cleaning pipeline finished",
		slog.Int("input_rows", stats.InputRows),
		slog.Int("missing_customer", stats.MissingCustomer),
		slog.Int("missing_description", stats.MissingDescription),
		slog.Int("non_positive_quantity", stats.NonPositiveQty),
		slog.Int("non_positive_price", stats.NonPositivePrice),
		slog.Int("output_rows", stats.OutputRows))

	return records, stats, nil
}

// timestampLayouts covers the formats the workbook renderer and the
// CSV exporter produce.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/06 15:04",
	"01-02-06 15:04",
	"1/2/2006 15:04",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// parseCount parses an integer column. Spreadsheet round-trips may
// render integers as "17850.0"; an integral float is accepted.
func parseCount(value string) (int64, error) {
	clean := strings.ReplaceAll(value, ",", "")
	if n, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	return int64(f), nil
}

func parseAmount(value string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
}
