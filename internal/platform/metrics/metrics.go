// Package metrics exports fetch and governor statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stock_fetcher/internal/shared/ratelimiter"
)

// Collector records per-operation outcomes.
type Collector struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCollector creates the fetch metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdata_fetch_operations_total",
				Help: "Completed fetch operations by operation and outcome",
			}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketdata_fetch_duration_seconds",
				Help:    "Time to complete one fetch operation",
				Buckets: prometheus.DefBuckets,
			}, []string{"op"}),
	}
	reg.MustRegister(c.ops, c.duration)
	return c
}

// Observe records one completed operation.
func (c *Collector) Observe(op string, d time.Duration, ok bool) {
	outcome := "error"
	if ok {
		outcome = "success"
	}
	c.ops.WithLabelValues(op, outcome).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())
}

// RegisterGovernor exposes the governor state as gauges read at scrape time.
func RegisterGovernor(reg prometheus.Registerer, snapshot func() ratelimiter.State) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketdata_governor_tracked_calls",
			Help: "Governed calls inside the rolling window",
		}, func() float64 { return float64(snapshot().TrackedCalls) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketdata_governor_consecutive_errors",
			Help: "Consecutive provider errors since the last success",
		}, func() float64 { return float64(snapshot().ConsecutiveErrors) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "marketdata_governor_base_delay_seconds",
			Help: "Current base delay applied near the rate ceiling",
		}, func() float64 { return snapshot().BaseDelay.Seconds() }),
	)
}
