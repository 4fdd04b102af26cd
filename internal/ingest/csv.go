package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads the raw transaction rows from a flat CSV file, the
// format produced by the exporter. The header is matched by name, so
// exported files carrying extra derived columns reimport cleanly; only
// the eight base columns are read back. maxRows caps the number of
// data rows read after the header; zero means unlimited.
func LoadCSV(path string, maxRows int) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return readCSV(f, maxRows)
}

func readCSV(r io.Reader, maxRows int) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &SchemaError{Reason: "csv is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, want := range baseColumns {
		if _, ok := index[want]; !ok {
			return nil, &SchemaError{Column: want, Reason: "missing column in csv header"}
		}
	}

	cell := func(row []string, name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var raw []RawRow
	for line := 2; ; line++ {
		if maxRows > 0 && len(raw) == maxRows {
			break
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}
		raw = append(raw, RawRow{
			Line:        line,
			InvoiceNo:   cell(row, "InvoiceNo"),
			StockCode:   cell(row, "StockCode"),
			Description: cell(row, "Description"),
			Quantity:    cell(row, "Quantity"),
			InvoiceDate: cell(row, "InvoiceDate"),
			UnitPrice:   cell(row, "UnitPrice"),
			CustomerID:  cell(row, "CustomerID"),
			Country:     cell(row, "Country"),
		})
	}
	return raw, nil
}
