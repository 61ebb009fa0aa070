package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter serves a Collector's registry over HTTP. A nil Collector produces a
// handler that reports 503, so wiring this into a mux is always safe regardless of whether
// metrics collection is enabled.
type PrometheusExporter struct {
	collector *Collector
}

// NewPrometheusExporter wraps collector, which may be nil.
func NewPrometheusExporter(collector *Collector) *PrometheusExporter {
	return &PrometheusExporter{collector: collector}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	registry := e.collector.Registry()
	if registry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
