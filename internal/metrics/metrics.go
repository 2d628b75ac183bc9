// Package metrics holds the Prometheus collectors shared by the cache
// components. Collectors are created per registerer so tests can use a
// private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sportdata_cache"

// Collectors groups every collector. A nil *Collectors is valid and records
// nothing.
type Collectors struct {
	// Saves counts CacheAddDto calls by store, category and result
	// (saved, skipped, error).
	Saves *prometheus.CounterVec
	// FanoutFailures counts store failures during a fan-out.
	FanoutFailures *prometheus.CounterVec
	// UpstreamFetches counts facade calls by operation and result.
	UpstreamFetches *prometheus.CounterVec
	// InflightWaits observes how long callers waited for fetch rights.
	InflightWaits prometheus.Histogram
	// InflightTimeouts counts acquisitions that gave up waiting.
	InflightTimeouts prometheus.Counter
	// Evictions counts entries removed by sweeps and purges.
	Evictions *prometheus.CounterVec
	// Items is the current entry count per store.
	Items *prometheus.GaugeVec
	// BreakerState is the facade circuit breaker state (0 closed, 1 half
	// open, 2 open).
	BreakerState *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg creates unregistered
// collectors.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Total number of payload saves handled by a store",
		}, []string{"store", "category", "result"}),
		FanoutFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_failures_total",
			Help:      "Total number of store failures during payload fan-out",
		}, []string{"store"}),
		UpstreamFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Total number of upstream fetches issued",
		}, []string{"op", "result"}),
		InflightWaits: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inflight_wait_seconds",
			Help:      "Time spent waiting for exclusive fetch rights",
			Buckets:   prometheus.DefBuckets,
		}),
		InflightTimeouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inflight_timeouts_total",
			Help:      "Total number of fetch right acquisitions that gave up waiting",
		}),
		Evictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Total number of entries removed",
		}, []string{"store", "reason"}),
		Items: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Current number of cached entries",
		}, []string{"store"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state, 0 closed, 1 half open, 2 open",
		}, []string{"name"}),
	}
}

func (c *Collectors) RecordSave(store, category, result string) {
	if c == nil {
		return
	}
	c.Saves.WithLabelValues(store, category, result).Inc()
}

func (c *Collectors) RecordFanoutFailure(store string) {
	if c == nil {
		return
	}
	c.FanoutFailures.WithLabelValues(store).Inc()
}

func (c *Collectors) RecordFetch(op string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.UpstreamFetches.WithLabelValues(op, result).Inc()
}

func (c *Collectors) ObserveWait(seconds float64) {
	if c == nil {
		return
	}
	c.InflightWaits.Observe(seconds)
}

func (c *Collectors) RecordInflightTimeout() {
	if c == nil {
		return
	}
	c.InflightTimeouts.Inc()
}

func (c *Collectors) RecordEvictions(store, reason string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.Evictions.WithLabelValues(store, reason).Add(float64(n))
}

func (c *Collectors) SetItems(store string, n int) {
	if c == nil {
		return
	}
	c.Items.WithLabelValues(store).Set(float64(n))
}

func (c *Collectors) SetBreakerState(name string, state int) {
	if c == nil {
		return
	}
	c.BreakerState.WithLabelValues(name).Set(float64(state))
}
