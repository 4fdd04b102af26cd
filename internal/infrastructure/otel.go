package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "retailpulse"
	ServiceVersion = "v1.0.0"
	MeterName      = "retailpulse"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	cfg := &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}
	if env == "development" {
		cfg.TraceExporter = "stdout"
		cfg.EnableTracing = true
	}
	return cfg
}

// InitializeOTel initializes OpenTelemetry tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.Handler()

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)

	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "metrics initialized",
		slog.String("exporter", cfg.MetricExporter))
	return nil
}

// DashboardMetrics holds the pipeline-level instruments.
type DashboardMetrics struct {
	DatasetLoads      metric.Int64Counter
	DatasetRows       metric.Int64Counter
	DatasetLoadTime   metric.Float64Histogram
	FilterEvaluations metric.Int64Counter
	FilterMatchedRows metric.Int64Histogram
	AggregationTime   metric.Float64Histogram
	ExportedRows      metric.Int64Counter
}

// CreateDashboardMetrics creates the pipeline metric instruments.
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	datasetLoads, err := meter.Int64Counter("retailpulse_dataset_loads_total",
		metric.WithDescription("Number of dataset load attempts"))
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset loads counter: %w", err)
	}

	datasetRows, err := meter.Int64Counter("retailpulse_dataset_rows_total",
		metric.WithDescription("Number of cleaned records loaded into stores"))
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset rows counter: %w", err)
	}

	datasetLoadTime, err := meter.Float64Histogram("retailpulse_dataset_load_duration_seconds",
		metric.WithDescription("Duration of dataset load and clean passes"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset load histogram: %w", err)
	}

	filterEvaluations, err := meter.Int64Counter("retailpulse_filter_evaluations_total",
		metric.WithDescription("Number of filter engine passes"))
	if err != nil {
		return nil, fmt.Errorf("failed to create filter evaluations counter: %w", err)
	}

	filterMatchedRows, err := meter.Int64Histogram("retailpulse_filter_matched_rows",
		metric.WithDescription("Rows matched per filter pass"))
	if err != nil {
		return nil, fmt.Errorf("failed to create filter matched histogram: %w", err)
	}

	aggregationTime, err := meter.Float64Histogram("retailpulse_aggregation_duration_seconds",
		metric.WithDescription("Duration of aggregation computations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregation histogram: %w", err)
	}

	exportedRows, err := meter.Int64Counter("retailpulse_exported_rows_total",
		metric.WithDescription("Rows written by the CSV exporter"))
	if err != nil {
		return nil, fmt.Errorf("failed to create exported rows counter: %w", err)
	}

	return &DashboardMetrics{
		DatasetLoads:      datasetLoads,
		DatasetRows:       datasetRows,
		DatasetLoadTime:   datasetLoadTime,
		FilterEvaluations: filterEvaluations,
		FilterMatchedRows: filterMatchedRows,
		AggregationTime:   aggregationTime,
		ExportedRows:      exportedRows,
	}, nil
}

// RecordDatasetLoad records the outcome of one dataset load attempt.
func (m *DashboardMetrics) RecordDatasetLoad(ctx context.Context, source string, rows int, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", success),
	)
	m.DatasetLoads.Add(ctx, 1, attrs)
	if success {
		m.DatasetRows.Add(ctx, int64(rows), attrs)
	}
	m.DatasetLoadTime.Record(ctx, duration.Seconds(), attrs)
}

// RecordFilterEvaluation records one filter engine pass.
func (m *DashboardMetrics) RecordFilterEvaluation(ctx context.Context, matched int) {
	if m == nil {
		return
	}
	m.FilterEvaluations.Add(ctx, 1)
	m.FilterMatchedRows.Record(ctx, int64(matched))
}

// RecordAggregation records the duration of one aggregation computation.
func (m *DashboardMetrics) RecordAggregation(ctx context.Context, name string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AggregationTime.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("aggregation", name)))
}

// RecordExport records rows written by one export.
func (m *DashboardMetrics) RecordExport(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.ExportedRows.Add(ctx, int64(rows))
}

// Shutdown gracefully shuts down the OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("otel shutdown errors: %v", errs)
	}
	return nil
}
