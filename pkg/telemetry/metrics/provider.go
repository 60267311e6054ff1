// Package metrics exposes Prometheus metrics for provider traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks per-provider request outcomes.
//
// Metrics:
//   - anvil_provider_requests_total: requests dispatched to each provider
//   - anvil_provider_errors_total: soft errors by provider
//   - anvil_provider_latency_seconds: generation latency
//   - anvil_provider_cache_hits_total: responses served from cache
//   - anvil_provider_cost_usd_total: accumulated estimated cost
type ProviderMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	cacheHits *prometheus.CounterVec
	cost      *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the
// provided registry.
func NewProviderMetrics(registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "anvil",
				Name:      "provider_requests_total",
				Help:      "Total number of generation requests dispatched to each provider",
			},
			[]string{"provider", "model"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "anvil",
				Name:      "provider_errors_total",
				Help:      "Total number of soft provider errors",
			},
			[]string{"provider"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "anvil",
				Name:      "provider_latency_seconds",
				Help:      "Provider generation latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),

		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "anvil",
				Name:      "provider_cache_hits_total",
				Help:      "Total number of responses served from the adapter cache",
			},
			[]string{"provider"},
		),

		cost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "anvil",
				Name:      "provider_cost_usd_total",
				Help:      "Accumulated estimated cost in USD",
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(
		pm.requests,
		pm.errors,
		pm.latency,
		pm.cacheHits,
		pm.cost,
	)

	return pm
}

// RecordRequest records one dispatched generation request.
func (pm *ProviderMetrics) RecordRequest(provider, model string) {
	pm.requests.WithLabelValues(provider, model).Inc()
}

// RecordError records a soft provider error.
func (pm *ProviderMetrics) RecordError(provider string) {
	pm.errors.WithLabelValues(provider).Inc()
}

// RecordLatency records the latency of a generation attempt.
func (pm *ProviderMetrics) RecordLatency(provider, model string, seconds float64) {
	pm.latency.WithLabelValues(provider, model).Observe(seconds)
}

// RecordCacheHit records a response served from cache.
func (pm *ProviderMetrics) RecordCacheHit(provider string) {
	pm.cacheHits.WithLabelValues(provider).Inc()
}

// RecordCost accumulates the estimated cost of a response.
func (pm *ProviderMetrics) RecordCost(provider, model string, usd float64) {
	if usd > 0 {
		pm.cost.WithLabelValues(provider, model).Add(usd)
	}
}
