package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the profile core. Enrichment
// failures are swallowed into absent fields by design, so the counter here is
// the only place they remain visible.
type Metrics struct {
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	cacheErrors        prometheus.Counter
	enrichmentFailures *prometheus.CounterVec
	registry           *prometheus.Registry
}

// NewMetrics creates and registers the profile metrics on the given registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_cache_hits_total",
			Help: "Cache hits by use case",
		}, []string{"use_case"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_cache_misses_total",
			Help: "Cache misses by use case",
		}, []string{"use_case"}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profile_cache_invalidations_total",
			Help: "Cache keys invalidated after committed writes",
		}),
		cacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profile_cache_errors_total",
			Help: "Cache operations that failed and were degraded to misses",
		}),
		enrichmentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_enrichment_failures_total",
			Help: "Optional decoration lookups that degraded to absent",
		}, []string{"source"}),
		registry: registry,
	}

	registry.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.cacheInvalidations,
		m.cacheErrors,
		m.enrichmentFailures,
	)

	return m
}

// Registry returns the backing registry for the metrics endpoint
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CacheHit records a cache hit for a use case
func (m *Metrics) CacheHit(useCase string) {
	m.cacheHits.WithLabelValues(useCase).Inc()
}

// CacheMiss records a cache miss for a use case
func (m *Metrics) CacheMiss(useCase string) {
	m.cacheMisses.WithLabelValues(useCase).Inc()
}

// CacheInvalidated records n invalidated keys
func (m *Metrics) CacheInvalidated(n int) {
	m.cacheInvalidations.Add(float64(n))
}

// CacheError records a degraded cache operation
func (m *Metrics) CacheError() {
	m.cacheErrors.Inc()
}

// EnrichmentFailed records a swallowed enrichment failure
func (m *Metrics) EnrichmentFailed(source string) {
	m.enrichmentFailures.WithLabelValues(source).Inc()
}
