package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"retailpulse/internal/dataset"
	"retailpulse/internal/filter"
)

// Columns is the exported header: the eight base columns followed by
// the derived columns, matching the record's csv tags.
var Columns = []string{
	"InvoiceNo", "StockCode", "Description", "Quantity",
	"InvoiceDate", "UnitPrice", "CustomerID", "Country",
	"Total", "Year", "Month", "MonthName", "Day", "Hour", "DayOfWeek", "Date",
}

// Options configures CSV output.
type Options struct {
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// Writer exports views as CSV files under a base directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger.With(slog.String("component", "exporter"))}
}

// WriteView writes the view to name under the writer's directory and
// returns the full path.
func (w *Writer) WriteView(name string, view *filter.View, opts Options) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := Stream(f, view, opts); err != nil {
		return "", err
	}

	w.logger.Info("view exported",
		slog.String("path", path),
		slog.Int("rows", view.Len()))

	return path, nil
}

// Stream writes the view as CSV to any writer. Used by the download
// handler to write straight into the response body.
func Stream(out io.Writer, view *filter.View, opts Options) error {
	if opts.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	records := view.Records()
	for i := range records {
		if err := writer.Write(recordRow(&records[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportFilename builds a timestamped download name.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("retail_export_%s.csv", now.Format("20060102_150405"))
}

// recordRow renders one record in Columns order. Floats use the
// shortest exact representation so reimports are numerically
// identical.
func recordRow(r *dataset.Record) []string {
	return []string{
		r.InvoiceNo,
		r.StockCode,
		r.Description,
		strconv.FormatInt(r.Quantity, 10),
		r.InvoiceDate.Format("2006-01-02 15:04:05"),
		strconv.FormatFloat(r.UnitPrice, 'f', -1, 64),
		strconv.FormatInt(r.CustomerID, 10),
		r.Country,
		strconv.FormatFloat(r.Total, 'f', -1, 64),
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Month),
		r.MonthName,
		strconv.Itoa(r.Day),
		strconv.Itoa(r.Hour),
		r.Weekday,
		r.Date.Format("2006-01-02"),
	}
}
