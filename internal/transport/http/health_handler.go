package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"retailpulse/internal/dataset"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	cache   *dataset.StoreCache
	started time.Time
	version string
}

// NewHealthHandler creates the handler.
func NewHealthHandler(cache *dataset.StoreCache, version string) *HealthHandler {
	return &HealthHandler{cache: cache, started: time.Now(), version: version}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	LoadedStores  int     `json:"loaded_stores"`
	Timestamp     string  `json:"timestamp"`
}

// Health handles GET /healthz. The server is healthy as soon as it
// serves requests; dataset loading is lazy and does not gate liveness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: time.Since(h.started).Seconds(),
		LoadedStores:  h.cache.Len(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
