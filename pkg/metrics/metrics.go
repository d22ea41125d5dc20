// Package metrics provides the Prometheus registry of the storefront client.
// All metrics are defined in their respective packages (client, cache,
// prefetch) to maintain modularity and avoid circular dependencies.
//
// This package documents the available metrics and reads them back for
// reporting.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry is the default Prometheus registry used by the storefront client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry collected.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Prefix is shared by every storefront metric.
const Prefix = "storefront_"

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - storefront_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - storefront_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - storefront_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Cache Metrics (pkg/cache):
//   - storefront_cache_hits_total (Counter): Subscriptions served from a settled entry
//   - storefront_cache_misses_total (Counter): Subscriptions that started a request
//   - storefront_cache_dedup_total (Counter): Subscriptions that joined an in-flight request
//   - storefront_cache_stale_discards_total (Counter): Responses of a superseded generation
//   - storefront_cache_invalidations_total{tag_type} (Counter): Invalidated tags by type
//   - storefront_cache_evictions_total (Counter): Entries evicted after the keep-unused period
//   - storefront_cache_entries (Gauge): Live entries
//
// Prefetch Metrics (pkg/prefetch):
//   - storefront_prefetch_queries_total{result} (Counter): Warmed queries by outcome
//   - storefront_prefetch_duration_seconds (Histogram): Duration of prefetch batches
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(storefront_cache_hits_total[5m])) /
//   (sum(rate(storefront_cache_hits_total[5m])) + sum(rate(storefront_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(storefront_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(storefront_request_duration_seconds_bucket[5m]))

// Sample is one metric value.
type Sample struct {
	// Name includes the labels, e.g. storefront_requests_total{endpoint="getCart",status="200"}.
	Name  string
	Value float64
}

// Snapshot returns the current storefront samples sorted by name.
// Histograms are reported by their sample count.
func Snapshot() ([]Sample, error) {
	families, err := Gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var samples []Sample
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), Prefix) {
			continue
		}
		for _, m := range family.GetMetric() {
			samples = append(samples, Sample{
				Name:  family.GetName() + labels(m),
				Value: value(family.GetType(), m),
			})
		}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		pairs = append(pairs, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func value(typ dto.MetricType, m *dto.Metric) float64 {
	switch typ {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}
