package prefetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WarmedQueries tracks warmed queries by outcome
	WarmedQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_prefetch_queries_total",
			Help: "Total number of prefetched queries",
		},
		[]string{"result"}, // "success", "error", "timeout"
	)

	// WarmDuration tracks the duration of a Warm call
	WarmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_prefetch_duration_seconds",
			Help:    "Duration of prefetch batches",
			Buckets: prometheus.DefBuckets,
		},
	)
)
