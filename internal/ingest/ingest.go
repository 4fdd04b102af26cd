package ingest

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound is returned when the configured workbook or CSV
// file does not exist on disk.
var ErrSourceNotFound = errors.New("source file not found")

// ErrSheetNotFound is returned when the workbook exists but does not
// contain the configured sheet.
var ErrSheetNotFound = errors.New("sheet not found in workbook")

// SchemaError reports a structural problem with the source table. A
// schema error aborts the whole load; no partial store is built.
type SchemaError struct {
	Row    int    // 1-based source row, 0 when the header is at fault
	Column string // source column name, empty for row-level problems
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	if e.Column == "" {
		return fmt.Sprintf("schema error at row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("schema error at row %d, column %s: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
}

// RawRow is one untyped source row in column order. Line is the
// 1-based row number in the source, kept for error reporting.
type RawRow struct {
	Line        int
	InvoiceNo   string
	StockCode   string
	Description string
	Quantity    string
	InvoiceDate string
	UnitPrice   string
	CustomerID  string
	Country     string
}

// baseColumns is the required header, in source order.
var baseColumns = []string{
	"InvoiceNo",
	"StockCode",
	"Description",
	"Quantity",
	"InvoiceDate",
	"UnitPrice",
	"CustomerID",
	"Country",
}
