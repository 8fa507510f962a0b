package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aviation_briefing"

// Metrics holds the Prometheus counters and histograms for the parsers, the
// summarizer backend, the HTTP API and the feed worker.
type Metrics struct {
	ReportsProcessed *prometheus.CounterVec // labels: kind
	NotamsExtracted  *prometheus.CounterVec // labels: severity
	DegradedRecords  prometheus.Counter

	// Summarizer backend metrics.
	BackendRequests *prometheus.CounterVec // labels: outcome={success,error,timeout,empty}
	BackendDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec // labels: route, status
	FeedMessages *prometheus.CounterVec // labels: outcome={parsed,unparsed,invalid,sink_error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsProcessed,
		m.NotamsExtracted,
		m.DegradedRecords,
		m.BackendRequests,
		m.BackendDuration,
		m.HTTPRequests,
		m.FeedMessages,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_processed_total",
			Help:      "Reports parsed, by kind.",
		}, []string{"kind"}),
		NotamsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notams_extracted_total",
			Help:      "NOTAM records extracted, by severity.",
		}, []string{"severity"}),
		DegradedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_records_total",
			Help:      "Records whose extraction failed and were returned degraded.",
		}),
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarizer_backend_requests_total",
			Help:      "Summarizer backend calls by outcome.",
		}, []string{"outcome"}),
		BackendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarizer_backend_duration_seconds",
			Help:      "Summarizer backend call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		FeedMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_messages_total",
			Help:      "Feed messages handled by outcome.",
		}, []string{"outcome"}),
	}
}
