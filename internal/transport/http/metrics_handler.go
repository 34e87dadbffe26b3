package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pricelens/internal/services"
	"pricelens/internal/transport/respond"
)

// CacheStatsSource reports coefficient cache counters
type CacheStatsSource interface {
	CacheStats() services.CacheStats
}

// MetricsHandler exposes the Prometheus scrape endpoint and a JSON view of the
// coefficient cache
type MetricsHandler struct {
	exposition http.Handler
	cache      CacheStatsSource
}

// NewMetricsHandler creates a new metrics handler. A nil exposition handler
// answers the scrape endpoint with a JSON 404.
func NewMetricsHandler(exposition http.Handler, cache CacheStatsSource) *MetricsHandler {
	if exposition == nil {
		exposition = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respond.JSON(w, r, map[string]string{"error": "metrics exporter disabled"}, http.StatusNotFound)
		})
	}
	return &MetricsHandler{exposition: exposition, cache: cache}
}

// Routes sets up the metrics routes, mounted under /metrics
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/", h.exposition)
	r.Get("/cache", h.GetCacheStats)
	return r
}

// GetCacheStats handles GET /metrics/cache
func (h *MetricsHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, h.cache.CacheStats())
}
