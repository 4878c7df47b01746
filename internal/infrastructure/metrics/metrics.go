package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides Prometheus metrics for the food search pipeline. All
// recording methods are nil-safe so callers can run without metrics wired.
type Collector struct {
	searchesTotal        *prometheus.CounterVec
	transportCallsTotal  *prometheus.CounterVec
	retriesTotal         prometheus.Counter
	rateLimitBlocksTotal prometheus.Counter
	dedupCoalescedTotal  prometheus.Counter
}

// NewCollector creates a collector registered on the default registerer.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector using the supplied registerer.
func NewCollectorWithRegistry(registry prometheus.Registerer) *Collector {
	return &Collector{
		searchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodscout_searches_total",
				Help: "Total number of food searches by outcome",
			},
			[]string{"result"},
		),
		transportCallsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodscout_transport_calls_total",
				Help: "Total number of outbound search calls by result class",
			},
			[]string{"class"},
		),
		retriesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "foodscout_retries_total",
				Help: "Total number of retry attempts",
			},
		),
		rateLimitBlocksTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "foodscout_rate_limit_blocks_total",
				Help: "Total number of calls refused by the rate-limit cooldown",
			},
		),
		dedupCoalescedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "foodscout_dedup_coalesced_total",
				Help: "Total number of searches coalesced onto an in-flight fetch",
			},
		),
	}
}

// SearchResult records the terminal outcome of a search: "ok", "empty",
// "failed" or "short_query".
func (c *Collector) SearchResult(result string) {
	if c == nil {
		return
	}
	c.searchesTotal.WithLabelValues(result).Inc()
}

// TransportCall records one outbound call by result class.
func (c *Collector) TransportCall(class string) {
	if c == nil {
		return
	}
	c.transportCallsTotal.WithLabelValues(class).Inc()
}

// Retry records a scheduled retry attempt.
func (c *Collector) Retry() {
	if c == nil {
		return
	}
	c.retriesTotal.Inc()
}

// RateLimitBlock records a call refused because of the global cooldown.
func (c *Collector) RateLimitBlock() {
	if c == nil {
		return
	}
	c.rateLimitBlocksTotal.Inc()
}

// DedupCoalesced records a caller attached to an existing in-flight fetch.
func (c *Collector) DedupCoalesced() {
	if c == nil {
		return
	}
	c.dedupCoalescedTotal.Inc()
}
