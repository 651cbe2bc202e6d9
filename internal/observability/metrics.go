package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for search, benchmarks and load tests.
//
// Collectors are registered on a private registry so several instances can
// coexist in one process (tests, embedded servers):
//
//	metrics := observability.NewMetrics()
//	metrics.ObserveSearch("success", time.Since(start))
//	http.Handle("/metrics", metrics.Handler())
type Metrics struct {
	registry *prometheus.Registry

	// SearchRequests counts search requests.
	// Labels: status (success|parse|enrich|hybrid|error)
	SearchRequests *prometheus.CounterVec

	// SearchDuration measures end-to-end search latency in seconds.
	// Labels: status
	SearchDuration *prometheus.HistogramVec

	// HTTPRequestDuration measures HTTP API request latency.
	// Labels: method, path, status_code
	HTTPRequestDuration *prometheus.HistogramVec

	// BenchmarkRuns counts benchmark mode runs.
	// Labels: mode (Bm25|Ann|Hybrid|Fallback), status (success|error)
	BenchmarkRuns *prometheus.CounterVec

	// BenchmarkMRR is the MRR of the latest run per mode.
	// Labels: mode
	BenchmarkMRR *prometheus.GaugeVec

	// LoadTestQPS is the throughput of the latest load test.
	LoadTestQPS prometheus.Gauge

	// LoadTestMedianLatency is the median query latency of the latest load test, in ms.
	LoadTestMedianLatency prometheus.Gauge

	// AlertsFired counts regression alerts.
	// Labels: name, severity
	AlertsFired *prometheus.CounterVec

	// EmbeddingCacheLookups counts query embedding cache lookups.
	// Labels: result (hit|miss)
	EmbeddingCacheLookups *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SearchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocontext_search_requests_total",
				Help: "Total number of search requests by status",
			},
			[]string{"status"},
		),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gocontext_search_duration_seconds",
				Help:    "Search request latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gocontext_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"method", "path", "status_code"},
		),
		BenchmarkRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocontext_benchmark_runs_total",
				Help: "Total number of benchmark mode runs",
			},
			[]string{"mode", "status"},
		),
		BenchmarkMRR: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gocontext_benchmark_mrr",
				Help: "Mean reciprocal rank of the latest benchmark run per mode",
			},
			[]string{"mode"},
		),
		LoadTestQPS: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gocontext_loadtest_qps",
				Help: "Queries per second of the latest load test",
			},
		),
		LoadTestMedianLatency: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gocontext_loadtest_median_latency_ms",
				Help: "Median query latency of the latest load test in milliseconds",
			},
		),
		AlertsFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocontext_regression_alerts_total",
				Help: "Total number of regression alerts fired",
			},
			[]string{"name", "severity"},
		),
		EmbeddingCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocontext_embedding_cache_lookups_total",
				Help: "Total number of embedding cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveSearch records one search request
func (m *Metrics) ObserveSearch(status string, d time.Duration) {
	m.SearchRequests.WithLabelValues(status).Inc()
	m.SearchDuration.WithLabelValues(status).Observe(d.Seconds())
}

// ObserveEmbeddingCacheLookup records one embedding cache lookup
func (m *Metrics) ObserveEmbeddingCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.EmbeddingCacheLookups.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
