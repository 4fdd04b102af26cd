package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"retailpulse/internal/config"
	"retailpulse/internal/dataset"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/middleware"
	"retailpulse/internal/services"
	transport "retailpulse/internal/transport/http"
)

// Application owns every long-lived component of the server.
type Application struct {
	config    *config.Config
	logger    *slog.Logger
	otel      *infrastructure.OTelProviders
	cache     *dataset.StoreCache
	dashboard *services.DashboardService
	router    chi.Router
	server    *http.Server
}

// NewApplication builds the full dependency graph from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize otel: %w", err)
	}

	var metrics *infrastructure.DashboardMetrics
	if otelProviders.Meter != nil {
		metrics, err = infrastructure.CreateDashboardMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
	}

	cache := dataset.NewStoreCache(logger)
	dashboard := services.NewDashboardService(cfg.Dataset, cache, metrics, logger)

	app := &Application{
		config:    cfg,
		logger:    logger,
		otel:      otelProviders,
		cache:     cache,
		dashboard: dashboard,
	}
	app.router = app.setupRouter()
	app.server = app.createServer()
	return app, nil
}

func (a *Application) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compress(5))
	r.Use(chimiddleware.Timeout(a.config.Server.RequestTimeout))

	if a.config.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: a.config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		}))
	}
	if a.config.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			a.config.Security.RateLimit.RPS,
			a.config.Security.RateLimit.Burst,
			a.logger)
		r.Use(limiter.Handler)
	}

	errHandler := apierrors.NewErrorHandler(a.logger, a.config.Logging.Development)
	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	dashboardHandler := transport.NewDashboardHandler(a.dashboard, errHandler, a.logger)
	r.Mount("/api", dashboardHandler.Routes())

	healthHandler := transport.NewHealthHandler(a.cache, infrastructure.ServiceVersion)
	r.Get("/healthz", healthHandler.Health)

	if a.otel.PrometheusHTTP != nil {
		r.Handle("/metrics", a.otel.PrometheusHTTP)
	}

	return r
}

func (a *Application) createServer() *http.Server {
	return &http.Server{
		Addr:           fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:        a.router,
		ReadTimeout:    a.config.Server.ReadTimeout,
		WriteTimeout:   a.config.Server.WriteTimeout,
		IdleTimeout:    a.config.Server.IdleTimeout,
		MaxHeaderBytes: a.config.Server.MaxHeaderBytes,
	}
}

// Router exposes the assembled router; used by tests.
func (a *Application) Router() chi.Router { return a.router }

// Run starts the server and blocks until shutdown. With preload
// enabled the dataset is loaded before the listener opens, so the
// first request never pays the parse cost.
func (a *Application) Run() error {
	ctx := context.Background()

	if a.config.Dataset.Preload {
		started := time.Now()
		store, err := a.dashboard.Store(ctx)
		if err != nil {
			return fmt.Errorf("preload dataset: %w", err)
		}
		a.logger.InfoContext(ctx, "dataset preloaded",
			slog.Int("rows", store.Len()),
			slog.Duration("elapsed", time.Since(started)))
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown drains in-flight requests and releases resources.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		return err
	}

	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Warn("otel shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return err
	}

	a.logger.Info("server stopped")
	return nil
}
