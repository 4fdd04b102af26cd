// Command exportcsv loads a workbook, runs the cleaning pipeline, and
// writes the full canonical CSV. Useful for one-off conversions and
// for producing the flat-file form of the dataset.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"retailpulse/internal/dataset"
	"retailpulse/internal/exporter"
	"retailpulse/internal/filter"
	"retailpulse/internal/ingest"
)

func main() {
	var (
		in      = flag.String("in", "data/Online Retail.xlsx", "input workbook or csv")
		sheet   = flag.String("sheet", "Online Retail", "workbook sheet name")
		out     = flag.String("out", "", "output csv path (default: derived from input)")
		maxRows = flag.Int("max-rows", 0, "cap on data rows read, 0 for unlimited")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(*in, *sheet, *out, *maxRows); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(in, sheet, out string, maxRows int) error {
	started := time.Now()

	var (
		raw []ingest.RawRow
		err error
	)
	if strings.EqualFold(filepath.Ext(in), ".csv") {
		raw, err = ingest.LoadCSV(in, maxRows)
	} else {
		raw, err = ingest.LoadWorkbook(in, sheet, maxRows)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}

	records, stats, err := ingest.Clean(raw)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	if out == "" {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		out = base + "_clean.csv"
	}

	store := dataset.NewStore(in, records)
	writer := exporter.NewWriter(filepath.Dir(out), nil)
	path, err := writer.WriteView(filepath.Base(out), filter.NewView(store.Records()), exporter.Options{BOMPrefix: true})
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	slog.Info("export complete",
		slog.String("path", path),
		slog.Int("input_rows", stats.InputRows),
		slog.Int("dropped_rows", stats.Dropped()),
		slog.Int("exported_rows", stats.OutputRows),
		slog.Duration("elapsed", time.Since(started)))

	return nil
}
