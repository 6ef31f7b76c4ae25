package api

import (
	"net/http"

	"github.com/okian/taskprio/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus registry.
type MetricsHandler struct {
	h http.Handler
}

// NewMetricsHandler creates a handler over the engine's custom registry.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{h: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})}
}

// HandleMetrics handles GET /metrics requests.
func (h *MetricsHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.h.ServeHTTP(w, r)
}
