package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SearchMetrics tracks store-search traffic and search-log health.
// All methods are nil-safe so wiring metrics stays optional in tests.
type SearchMetrics struct {
	searches     *prometheus.CounterVec
	logFailures  prometheus.Counter
	queryLatency *prometheus.HistogramVec
}

// NewSearchMetrics registers the search collectors on the given registerer.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	m := &SearchMetrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketmap",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Store searches by search type.",
		}, []string{"type"}),
		logFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketmap",
			Subsystem: "search",
			Name:      "log_failures_total",
			Help:      "Search-log writes that failed and were dropped.",
		}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketmap",
			Subsystem: "search",
			Name:      "query_duration_seconds",
			Help:      "Store query latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.searches, m.logFailures, m.queryLatency)
	}
	return m
}

// RecordSearch counts one search of the given type.
func (m *SearchMetrics) RecordSearch(searchType string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(searchType).Inc()
}

// RecordLogFailure counts a dropped search-log write.
func (m *SearchMetrics) RecordLogFailure() {
	if m == nil {
		return
	}
	m.logFailures.Inc()
}

// ObserveQuery records the latency of a store query.
func (m *SearchMetrics) ObserveQuery(operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queryLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler exposes the prometheus scrape endpoint for a registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
