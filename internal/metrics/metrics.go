// Package metrics defines the Prometheus collectors for the search backend.
// Collectors register on the default registry and are exposed via /metrics
// when metrics are enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts completed searches by response source.
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dategenie_searches_total",
		Help: "Completed venue searches by response source.",
	}, []string{"source"})

	// SearchLatency observes end-to-end search handling time.
	SearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dategenie_search_duration_seconds",
		Help:    "End-to-end search latency.",
		Buckets: prometheus.DefBuckets,
	})

	// ProviderRequestsTotal counts outbound places-provider calls by outcome.
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dategenie_provider_requests_total",
		Help: "Outbound places-provider requests by outcome.",
	}, []string{"status"})

	// PitchResultsTotal counts pitch resolutions by path.
	PitchResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dategenie_pitch_results_total",
		Help: "Pitch resolutions by path (cached, generated, fallback).",
	}, []string{"result"})

	// CacheOpsTotal counts search-cache lookups by outcome.
	CacheOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dategenie_cache_ops_total",
		Help: "Search cache lookups by outcome (hit, miss, error).",
	}, []string{"outcome"})
)
