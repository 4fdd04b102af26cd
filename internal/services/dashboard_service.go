package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/dataset"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/filter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/ingest"
)

// DatasetSummary is the store metadata the rendering layer needs to
// populate its filter widgets.
type DatasetSummary struct {
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	Countries []string  `json:"countries"`
	Products  []string  `json:"products"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// DashboardService serves the aggregation catalog over the configured
// dataset. The store is loaded lazily on first use and cached for the
// process lifetime.
type DashboardService struct {
	cfg     config.DatasetConfig
	cache   *dataset.StoreCache
	engine  *filter.Engine
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger
}

// NewDashboardService wires the service. metrics may be nil when
// observability is disabled.
func NewDashboardService(cfg config.DatasetConfig, cache *dataset.StoreCache, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cfg:     cfg,
		cache:   cache,
		engine:  filter.NewEngine(logger),
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
}

// Store returns the cleaned dataset, loading and caching it on first
// call. Concurrent first calls share one load.
func (s *DashboardService) Store(ctx context.Context) (*dataset.Store, error) {
	key := s.cfg.Path + "::" + s.cfg.Sheet
	store, err := s.cache.GetOrLoad(ctx, key, s.load)
	if err != nil {
		return nil, s.mapLoadError(err)
	}
	return store, nil
}

func (s *DashboardService) load(ctx context.Context) (*dataset.Store, error) {
	started := time.Now()

	var (
		raw []ingest.RawRow
		err error
	)
	if strings.EqualFold(filepath.Ext(s.cfg.Path), ".csv") {
		raw, err = ingest.LoadCSV(s.cfg.Path, s.cfg.MaxRows)
	} else {
		raw, err = ingest.LoadWorkbook(s.cfg.Path, s.cfg.Sheet, s.cfg.MaxRows)
	}
	if err != nil {
		s.metrics.RecordDatasetLoad(ctx, s.cfg.Path, 0, time.Since(started), false)
		return nil, err
	}

	records, stats, err := ingest.Clean(raw)
	if err != nil {
		s.metrics.RecordDatasetLoad(ctx, s.cfg.Path, 0, time.Since(started), false)
		return nil, err
	}

	store := dataset.NewStore(s.cfg.Path, records)
	s.metrics.RecordDatasetLoad(ctx, s.cfg.Path, store.Len(), time.Since(started), true)
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", s.cfg.Path),
		slog.String("sheet", s.cfg.Sheet),
		slog.Int("raw_rows", stats.InputRows),
		slog.Int("clean_rows", stats.OutputRows),
		slog.Int("dropped_missing_customer", stats.MissingCustomer),
		slog.Int("dropped_missing_description", stats.MissingDescription),
		slog.Int("dropped_nonpositive_qty", stats.NonPositiveQty),
		slog.Int("dropped_nonpositive_price", stats.NonPositivePrice),
		slog.Duration("elapsed", time.Since(started)))

	return store, nil
}

func (s *DashboardService) mapLoadError(err error) error {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	if errors.Is(err, ingest.ErrSourceNotFound) || errors.Is(err, ingest.ErrSheetNotFound) {
		return fmt.Errorf("%w: %s", apierrors.ErrDatasetNotFound, err.Error())
	}
	var schemaErr *ingest.SchemaError
	if errors.As(err, &schemaErr) {
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, "DATASET_SCHEMA", "Dataset schema error", schemaErr.Error())
	}
	return fmt.Errorf("%w: %s", apierrors.ErrDatasetLoad, err.Error())
}

// Summary returns the metadata of the loaded store.
func (s *DashboardService) Summary(ctx context.Context) (DatasetSummary, error) {
	store, err := s.Store(ctx)
	if err != nil {
		return DatasetSummary{}, err
	}
	from, to := store.DateSpan()
	return DatasetSummary{
		Source:    store.Source(),
		Rows:      store.Len(),
		DateFrom:  from,
		DateTo:    to,
		Countries: store.Countries(),
		Products:  store.Products(),
		LoadedAt:  store.LoadedAt(),
	}, nil
}

// View validates params and evaluates them against the store.
func (s *DashboardService) View(ctx context.Context, params filter.Params) (*filter.View, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	store, err := s.Store(ctx)
	if err != nil {
		return nil, err
	}
	view := s.engine.Apply(store, params)
	s.metrics.RecordFilterEvaluation(ctx, view.Len())
	return view, nil
}

// KPIs computes the headline metrics for the filtered view.
func (s *DashboardService) KPIs(ctx context.Context, params filter.Params) (analytics.KPIBundle, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return analytics.KPIBundle{}, err
	}
	defer s.timeAggregation(ctx, "kpis")()
	return analytics.KPIs(view), nil
}

// RevenueSeries computes the revenue time series at the given
// granularity.
func (s *DashboardService) RevenueSeries(ctx context.Context, params filter.Params, granularity analytics.Granularity) ([]analytics.SeriesPoint, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return nil, err
	}
	defer s.timeAggregation(ctx, "timeseries")()
	return analytics.RevenueSeries(view, granularity)
}

// TopProducts ranks products by revenue.
func (s *DashboardService) TopProducts(ctx context.Context, params filter.Params, n int) ([]analytics.GroupTotal, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return nil, err
	}
	defer s.timeAggregation(ctx, "top_products")()
	return analytics.TopProducts(view, n)
}

// TopCountries ranks countries by revenue.
func (s *DashboardService) TopCountries(ctx context.Context, params filter.Params, n int) ([]analytics.GroupTotal, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return nil, err
	}
	defer s.timeAggregation(ctx, "top_countries")()
	return analytics.TopCountries(view, n)
}

// TopCustomers ranks customers by revenue and by invoice count.
func (s *DashboardService) TopCustomers(ctx context.Context, params filter.Params, n int) (analytics.TopCustomersResult, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return analytics.TopCustomersResult{}, err
	}
	defer s.timeAggregation(ctx, "top_customers")()
	return analytics.TopCustomers(view, n)
}

// Heatmap computes the weekday-hour revenue grid.
func (s *DashboardService) Heatmap(ctx context.Context, params filter.Params) (analytics.Heatmap, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return analytics.Heatmap{}, err
	}
	defer s.timeAggregation(ctx, "heatmap")()
	return analytics.WeekdayHourHeatmap(view), nil
}

// Histogram computes a fixed-bin distribution of the given field.
func (s *DashboardService) Histogram(ctx context.Context, params filter.Params, field analytics.HistogramField, cutoff float64, bins int) (analytics.Histogram, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return analytics.Histogram{}, err
	}
	defer s.timeAggregation(ctx, "histogram")()
	return analytics.HistogramOf(view, field, cutoff, bins)
}

// Describe computes descriptive statistics of the numeric fields.
func (s *DashboardService) Describe(ctx context.Context, params filter.Params) (analytics.Summary, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return analytics.Summary{}, err
	}
	defer s.timeAggregation(ctx, "describe")()
	return analytics.Describe(view), nil
}

// Records returns a sorted, limited projection for the detail table.
func (s *DashboardService) Records(ctx context.Context, params filter.Params, column analytics.SortColumn, descending bool, limit int) ([]dataset.Record, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return nil, err
	}
	return analytics.SortRecords(view, column, descending, limit)
}

// ExportCSV streams the filtered view as CSV to out and returns the
// number of rows written.
func (s *DashboardService) ExportCSV(ctx context.Context, params filter.Params, out io.Writer) (int, error) {
	view, err := s.View(ctx, params)
	if err != nil {
		return 0, err
	}
	if err := exporter.Stream(out, view, exporter.Options{BOMPrefix: true}); err != nil {
		return 0, fmt.Errorf("stream export: %w", err)
	}
	s.metrics.RecordExport(ctx, view.Len())
	return view.Len(), nil
}

func (s *DashboardService) timeAggregation(ctx context.Context, name string) func() {
	started := time.Now()
	return func() {
		s.metrics.RecordAggregation(ctx, name, time.Since(started))
	}
}
