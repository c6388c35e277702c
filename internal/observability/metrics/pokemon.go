// Package metrics provides Prometheus metrics for the caching proxy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PokemonMetrics contains Prometheus metrics for the pokemon cache services
type PokemonMetrics struct {
	registry *prometheus.Registry

	// Cache reconciliation metrics
	cacheLookupsTotal *prometheus.CounterVec

	// Upstream fetch metrics
	upstreamFetchesTotal  *prometheus.CounterVec
	upstreamFetchDuration *prometheus.HistogramVec

	// Service operation metrics
	serviceOperationsTotal *prometheus.CounterVec

	// Bootstrap metrics
	bootstrapInsertsTotal prometheus.Counter

	collectors []prometheus.Collector
}

// NewPokemonMetrics creates and registers new pokemon service metrics
func NewPokemonMetrics(registry *prometheus.Registry) (*PokemonMetrics, error) {
	m := &PokemonMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PokemonMetrics) initMetrics() {
	m.cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokemon_cache_lookups_total",
			Help: "Total number of local cache lookups during reconciliation",
		},
		[]string{"resource", "result"}, // resource: abilities, types, sprites; result: hit, miss
	)

	m.upstreamFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokemon_upstream_fetches_total",
			Help: "Total number of upstream API fetches",
		},
		[]string{"kind", "status"}, // kind: pokemon, ability, type, page; status: success, error
	)

	m.upstreamFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokemon_upstream_fetch_duration_seconds",
			Help:    "Time taken for upstream API fetches",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"kind"},
	)

	m.serviceOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokemon_service_operations_total",
			Help: "Total number of service operations",
		},
		[]string{"operation", "status"}, // operation: detail, update, list, bootstrap
	)

	m.bootstrapInsertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pokemon_bootstrap_inserts_total",
		Help: "Total number of catalog rows inserted by bootstrap",
	})

	m.collectors = []prometheus.Collector{
		m.cacheLookupsTotal,
		m.upstreamFetchesTotal,
		m.upstreamFetchDuration,
		m.serviceOperationsTotal,
		m.bootstrapInsertsTotal,
	}
}

// Describe implements the Collector interface
func (m *PokemonMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *PokemonMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordCacheLookup records a local cache lookup outcome during reconciliation
func (m *PokemonMetrics) RecordCacheLookup(resource, result string) {
	if m == nil {
		return
	}
	m.cacheLookupsTotal.WithLabelValues(resource, result).Inc()
}

// RecordUpstreamFetch records an upstream API fetch
func (m *PokemonMetrics) RecordUpstreamFetch(kind, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.upstreamFetchesTotal.WithLabelValues(kind, status).Inc()
	m.upstreamFetchDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordOperation records a service operation outcome
func (m *PokemonMetrics) RecordOperation(operation, status string) {
	if m == nil {
		return
	}
	m.serviceOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordBootstrapInserts records rows inserted during catalog bootstrap
func (m *PokemonMetrics) RecordBootstrapInserts(count int) {
	if m == nil {
		return
	}
	m.bootstrapInsertsTotal.Add(float64(count))
}
