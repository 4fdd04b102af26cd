package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads the raw transaction rows from one sheet of an
// .xlsx workbook. The first row must be the header with the eight base
// columns in order. maxRows caps the number of data rows read after
// the header; zero means unlimited.
func LoadWorkbook(path, sheet string, maxRows int) ([]RawRow, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(f.GetSheetList(), ", "))
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Reason: "sheet is empty"}
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	data := rows[1:]
	if maxRows > 0 && len(data) > maxRows {
		data = data[:maxRows]
	}

	raw := make([]RawRow, 0, len(data))
	for i, row := range data {
		// Trailing empty cells are omitted by GetRows; pad so
		// every row has all eight columns.
		cells := make([]string, len(baseColumns))
		copy(cells, row)
		raw = append(raw, rowFromCells(i+2, cells))
	}

	slog.Debug("workbook loaded",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(raw)))

	return raw, nil
}

func checkHeader(header []string) error {
	if len(header) < len(baseColumns) {
		return &SchemaError{Reason: fmt.Sprintf("header has %d columns, want %d", len(header), len(baseColumns))}
	}
	for i, want := range baseColumns {
		got := strings.TrimSpace(header[i])
		if !strings.EqualFold(got, want) {
			return &SchemaError{
				Column: want,
				Value:  got,
				Reason: fmt.Sprintf("unexpected header in position %d", i+1),
			}
		}
	}
	return nil
}

func rowFromCells(line int, cells []string) RawRow {
	return RawRow{
		Line:        line,
		InvoiceNo:   strings.TrimSpace(cells[0]),
		StockCode:   strings.TrimSpace(cells[1]),
		Description: strings.TrimSpace(cells[2]),
		Quantity:    strings.TrimSpace(cells[3]),
		InvoiceDate: strings.TrimSpace(cells[4]),
		UnitPrice:   strings.TrimSpace(cells[5]),
		CustomerID:  strings.TrimSpace(cells[6]),
		Country:     strings.TrimSpace(cells[7]),
	}
}
