// Package metrics exposes Prometheus instrumentation for the knowledge
// provider: HTTP traffic, query matching, generation, and store sizes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus collectors for the service
type Registry struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Query matching metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	QueryResults  prometheus.Histogram

	// Generation metrics
	GenerationDuration prometheus.Gauge

	// Store metrics
	StoreNodes prometheus.Gauge
	StoreEdges prometheus.Gauge
}

// NewRegistry creates a registry with all collectors registered
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplekp_http_requests_total",
				Help: "Total HTTP requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simplekp_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplekp_queries_total",
				Help: "Total query-graph match requests by status",
			},
			[]string{"status"},
		),
		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "simplekp_query_duration_seconds",
				Help:    "Query matching duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		QueryResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "simplekp_query_results",
				Help:    "Number of results per query",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		GenerationDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "simplekp_generation_duration_seconds",
				Help: "Wall time of the startup graph generation",
			},
		),
		StoreNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "simplekp_store_nodes",
				Help: "Number of nodes in the loaded graph",
			},
		),
		StoreEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "simplekp_store_edges",
				Help: "Number of edges in the loaded graph",
			},
		),
	}

	reg.MustRegister(
		r.HTTPRequestsTotal,
		r.HTTPRequestDuration,
		r.QueriesTotal,
		r.QueryDuration,
		r.QueryResults,
		r.GenerationDuration,
		r.StoreNodes,
		r.StoreEdges,
	)

	return r
}

// Handler returns the HTTP handler serving the metrics endpoint
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuery records a query-graph match execution
func (r *Registry) RecordQuery(status string, duration time.Duration, results int) {
	r.QueriesTotal.WithLabelValues(status).Inc()
	r.QueryDuration.Observe(duration.Seconds())
	if status == "ok" {
		r.QueryResults.Observe(float64(results))
	}
}

// RecordGeneration records the startup generation timing
func (r *Registry) RecordGeneration(duration time.Duration) {
	r.GenerationDuration.Set(duration.Seconds())
}

// SetStoreSize records the loaded graph size
func (r *Registry) SetStoreSize(nodes, edges int) {
	r.StoreNodes.Set(float64(nodes))
	r.StoreEdges.Set(float64(edges))
}
