package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "noise_dashboard"

// Metrics holds the Prometheus counters and histograms for the dashboard.
type Metrics struct {
	PageRenders *prometheus.CounterVec // labels: page
	Uploads     *prometheus.CounterVec // labels: flow={heatmap,overlay,datasets}, outcome={ok,parse_error,schema_error,too_large}
	RowsDropped *prometheus.CounterVec // labels: flow, reason={missing,out_of_range}
	UploadBytes prometheus.Histogram

	HTTPRequests        *prometheus.CounterVec   // labels: method, route, status_class
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route

	// Boundary document metrics.
	BoundaryFetches       *prometheus.CounterVec // labels: outcome={success,error,rejected}
	BoundaryCache         *prometheus.CounterVec // labels: result={hit,miss}
	BoundaryFetchDuration prometheus.Histogram
}

var uploadBuckets = prometheus.ExponentialBuckets(1024, 4, 9) // 1 KiB .. 64 MiB

var fetchBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Render passes by page.",
		}, []string{"page"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploaded CSV files by flow and outcome.",
		}, []string{"flow", "outcome"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows left out of a map by flow and reason.",
		}, []string{"flow", "reason"}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of uploaded files in bytes.",
			Buckets:   uploadBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status_class"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BoundaryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_fetches_total",
			Help:      "Boundary document fetches by outcome.",
		}, []string{"outcome"}),
		BoundaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_cache_total",
			Help:      "Boundary cache lookups by result.",
		}, []string{"result"}),
		BoundaryFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "boundary_fetch_duration_seconds",
			Help:      "Boundary document fetch duration in seconds.",
			Buckets:   fetchBuckets,
		}),
	}

	prometheus.MustRegister(
		m.PageRenders,
		m.Uploads,
		m.RowsDropped,
		m.UploadBytes,
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.BoundaryFetches,
		m.BoundaryCache,
		m.BoundaryFetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PageRenders:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "page_renders_total"}, []string{"page"}),
		Uploads:               prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "uploads_total"}, []string{"flow", "outcome"}),
		RowsDropped:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "rows_dropped_total"}, []string{"flow", "reason"}),
		UploadBytes:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "upload_bytes", Buckets: uploadBuckets}),
		HTTPRequests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status_class"}),
		HTTPRequestDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds"}, []string{"method", "route"}),
		BoundaryFetches:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "boundary_fetches_total"}, []string{"outcome"}),
		BoundaryCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "boundary_cache_total"}, []string{"result"}),
		BoundaryFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "boundary_fetch_duration_seconds", Buckets: fetchBuckets}),
	}
}
