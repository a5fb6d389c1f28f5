// Package metrics exports Prometheus metrics for the query pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the query pipeline counters and histograms.
type Metrics struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	answers       *prometheus.CounterVec
	queryDuration prometheus.Histogram
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
}

// New creates the metric set on a fresh registry. Registry nil creates a
// private one, keeping tests isolated from the default registry.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_queries_total",
			Help: "Questions processed, labeled by primary intent.",
		}, []string{"intent"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_answers_total",
			Help: "Answers produced, labeled by serving backend.",
		}, []string{"backend"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "concierge_query_duration_seconds",
			Help:    "End-to-end question handling latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "concierge_cache_hits_total",
			Help: "Answers served from the response cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "concierge_cache_misses_total",
			Help: "Questions that missed the response cache.",
		}),
	}

	registry.MustRegister(m.queries, m.answers, m.queryDuration, m.cacheHits, m.cacheMisses)
	return m
}

// ObserveQuery records one handled question.
func (m *Metrics) ObserveQuery(intent string, duration time.Duration) {
	m.queries.WithLabelValues(intent).Inc()
	m.queryDuration.Observe(duration.Seconds())
}

// ObserveAnswer records which backend served an answer.
func (m *Metrics) ObserveAnswer(backend string) {
	m.answers.WithLabelValues(backend).Inc()
	if backend == "cache" {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
