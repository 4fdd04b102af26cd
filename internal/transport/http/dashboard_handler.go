package http

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"retailpulse/internal/analytics"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/filter"
	"retailpulse/internal/services"
)

// DashboardHandler serves the dashboard API.
type DashboardHandler struct {
	service  *services.DashboardService
	errors   *apierrors.ErrorHandler
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service *services.DashboardService, errHandler *apierrors.ErrorHandler, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:  service,
		errors:   errHandler,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Routes returns the router mounted under /api.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dataset/summary", h.DatasetSummary)
	r.Route("/dashboard", func(r chi.Router) {
		r.Post("/kpis", h.KPIs)
		r.Post("/timeseries", h.TimeSeries)
		r.Post("/top/{dimension}", h.Top)
		r.Post("/heatmap", h.Heatmap)
		r.Post("/histogram", h.Histogram)
		r.Post("/stats", h.Stats)
		r.Post("/records", h.Records)
	})
	r.Post("/export/csv", h.ExportCSV)
	return r
}

// filterRequest is the JSON body shared by every dashboard endpoint.
// Dates travel as plain date strings.
type filterRequest struct {
	DateFrom  string   `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo    string   `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Countries []string `json:"countries,omitempty"`
	Products  struct {
		Active   bool     `json:"active"`
		Selected []string `json:"selected,omitempty"`
	} `json:"products"`
	TotalMin    *float64 `json:"total_min,omitempty"`
	TotalMax    *float64 `json:"total_max,omitempty"`
	QuantityMin *int64   `json:"quantity_min,omitempty"`
	QuantityMax *int64   `json:"quantity_max,omitempty"`
}

// dataResponse is the standard success envelope.
type dataResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  *int        `json:"count,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, dataResponse{Status: "success", Data: data})
}

func respondCount(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, dataResponse{Status: "success", Data: data, Count: &count})
}

// decodeParams reads and validates the filter body. An empty body is
// the all-inclusive filter.
func (h *DashboardHandler) decodeParams(r *http.Request) (filter.Params, error) {
	var req filterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if err == io.EOF {
			return filter.Params{}, nil
		}
		return filter.Params{}, apierrors.InvalidRequestWithError(err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return filter.Params{}, apierrors.InvalidRequestWithError(err)
	}

	params := filter.Params{
		Countries: req.Countries,
		Products: filter.ProductFilter{
			Active:   req.Products.Active,
			Selected: req.Products.Selected,
		},
		TotalMin:    req.TotalMin,
		TotalMax:    req.TotalMax,
		QuantityMin: req.QuantityMin,
		QuantityMax: req.QuantityMax,
	}
	if req.DateFrom != "" {
		ts, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return filter.Params{}, apierrors.InvalidParameterError("date_from", err.Error())
		}
		params.DateFrom = &ts
	}
	if req.DateTo != "" {
		ts, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return filter.Params{}, apierrors.InvalidParameterError("date_to", err.Error())
		}
		params.DateTo = &ts
	}
	return params, nil
}

// DatasetSummary handles GET /api/dataset/summary.
func (h *DashboardHandler) DatasetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	respond(w, r, summary)
}

// KPIs handles POST /api/dashboard/kpis.
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	kpis, err := h.service.KPIs(r.Context(), params)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	respond(w, r, kpis)
}

// TimeSeries handles POST /api/dashboard/timeseries?granularity=.
func (h *DashboardHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	granularity := analytics.Granularity(r.URL.Query().Get("granularity"))
	if granularity == "" {
		granularity = analytics.GranularityMonth
	}
	series, err := h.service.RevenueSeries(r.Context(), params, granularity)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	respondCount(w, r, series, len(series))
}

// Top handles POST /api/dashboard/top/{dimension}?n=.
func (h *DashboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	n, err := queryInt(r, "n", 10)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	ctx := r.Context()
	switch dimension := chi.URLParam(r, "dimension"); dimension {
	case "products":
		top, err := h.service.TopProducts(ctx, params, n)
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		respondCount(w, r, top, len(top))
	case "countries":
		top, err := h.service.TopCountries(ctx, params, n)
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		respondCount(w, r, top, len(top))
	case "customers":
		result, err := h.service.TopCustomers(ctx, params, n)
		if err != nil {
			h.errors.HandleError(w, r, err)
			return
		}
		respond(w, r, result)
	default:
		h.errors.HandleError(w, r, apierrors.InvalidParameterError("dimension", "must be products, countries, or customers"))
	}
}

// Heatmap handles POST /api/dashboard/heatmap.
func (h *DashboardHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	heatmap, err := h.service.Heatmap(r.Context(), params)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	respond(w, r, heatmap)
}

// Histogram handles POST /api/dashboard/histogram?field=&cutoff=&bins=.
func (h *DashboardHandler) Histogram(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	field := analytics.HistogramField(r.URL.Query().Get("field"))
	if field == "" {
		field = analytics.FieldTotal
	}
	cutoff, err := queryFloat(r, "cutoff", defaultCutoff(field))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	bins, err := queryInt(r, "bins", 50)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	hist, err := h.service.Histogram(r.Context(), params, field, cutoff, bins)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	respond(w, r, hist)
}

// defaultCutoff mirrors the dashboard's stock distribution views:
// line totals up to 1000, quantities up to 50.
func defaultCutoff(field analytics.HistogramField) float64 {
	if field == analytics.FieldQuantity {
		return 50
	}
	return 1000
}

// Stats handles POST /api/dashboard/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	summary, err := h.service.Describe(r.Context(), params)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	respond(w, r, summary)
}

// Records handles POST /api/dashboard/records?sort=&dir=&limit=.
func (h *DashboardHandler) Records(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	column := analytics.SortColumn(r.URL.Query().Get("sort"))
	if column == "" {
		column = analytics.SortByInvoiceDate
	}
	descending := r.URL.Query().Get("dir") != "asc"
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	records, err := h.service.Records(r.Context(), params, column, descending, limit)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	respondCount(w, r, records, len(records))
}

// ExportCSV handles POST /api/export/csv, streaming the filtered view
// as a CSV download.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParams(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	filename := exporter.ExportFilename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	rows, err := h.service.ExportCSV(r.Context(), params, w)
	if err != nil {
		// View errors surface before any byte is written, so the
		// problem document still goes out cleanly.
		w.Header().Del("Content-Disposition")
		h.errors.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "csv export served",
		slog.String("filename", filename),
		slog.Int("rows", rows))
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.InvalidParameterError(name, "must be an integer")
	}
	return n, nil
}

func queryFloat(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apierrors.InvalidParameterError(name, "must be a number")
	}
	return f, nil
}
