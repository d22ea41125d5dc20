package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks subscriptions served from a settled entry
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Total number of storefront cache hits",
		},
	)

	// CacheMisses tracks subscriptions that started a request
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Total number of storefront cache misses",
		},
	)

	// DedupJoins tracks subscriptions that joined an in-flight request
	DedupJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_dedup_total",
			Help: "Total number of subscriptions sharing an in-flight request",
		},
	)

	// StaleDiscards tracks responses dropped because their generation was superseded
	StaleDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_stale_discards_total",
			Help: "Total number of discarded responses of a superseded generation",
		},
	)

	// Invalidations tracks invalidated tags by type
	Invalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_invalidations_total",
			Help: "Total number of invalidated cache tags",
		},
		[]string{"tag_type"}, // "Cart", "Product", ...
	)

	// Evictions tracks entries removed after their unused grace period
	Evictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_evictions_total",
			Help: "Total number of evicted cache entries",
		},
	)

	// Entries tracks the number of live entries
	Entries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cache_entries",
			Help: "Current number of storefront cache entries",
		},
	)
)
