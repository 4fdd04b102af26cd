package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
	"retailpulse/internal/dataset"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/services"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Security.RateLimit.Enabled = false

	app := &Application{
		config: cfg,
		logger: slog.Default(),
		otel:   &infrastructure.OTelProviders{},
		cache:  dataset.NewStoreCache(nil),
	}
	app.dashboard = services.NewDashboardService(cfg.Dataset, app.cache, nil, nil)
	app.router = app.setupRouter()
	return app
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRouter_UnknownRouteIsProblemJSON(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestRouter_SecurityHeaders(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_MissingDatasetIs404(t *testing.T) {
	app := newTestApp(t)
	badCfg := config.DatasetConfig{Path: "does/not/exist.xlsx", Sheet: "Online Retail", MaxRows: 1}
	app.dashboard = services.NewDashboardService(badCfg, app.cache, nil, nil)
	app.router = app.setupRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dataset/summary", nil)
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
