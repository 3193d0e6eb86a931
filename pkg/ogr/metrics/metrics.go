// Package metrics exports geometry handle lifecycle and native memory usage
// as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geobridge/ogr-go/pkg/ogr/handle"
)

// Collector observes handles and implements prometheus.Collector. Pass it to
// ogr.Open with ogr.WithObserver and register it with a registry.
type Collector struct {
	created         *prometheus.CounterVec
	finalized       *prometheus.CounterVec
	releaseFailures *prometheus.CounterVec
	live            *prometheus.GaugeVec
	nativeBytes     prometheus.Gauge
	nativeSize      *prometheus.HistogramVec

	snap struct {
		created, finalized, failures, live, bytes atomic.Int64
	}
}

// Snapshot is a point-in-time copy of the collector's totals.
type Snapshot struct {
	Created         int64 `json:"created" yaml:"created"`
	Finalized       int64 `json:"finalized" yaml:"finalized"`
	ReleaseFailures int64 `json:"release_failures" yaml:"release_failures"`
	Live            int64 `json:"live" yaml:"live"`
	NativeBytes     int64 `json:"native_bytes" yaml:"native_bytes"`
}

var (
	_ handle.Observer      = (*Collector)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handles_created_total",
				Help:      "Geometry handles created, by kind and ownership",
			},
			[]string{"kind", "ownership"},
		),
		finalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handles_finalized_total",
				Help:      "Geometry handles finalized, by kind, ownership and trigger",
			},
			[]string{"kind", "ownership", "trigger"},
		),
		releaseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "native_release_failures_total",
				Help:      "Native geometry destructions that failed",
			},
			[]string{"kind"},
		),
		live: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "handles_live",
				Help:      "Geometry handles not yet finalized",
			},
			[]string{"kind", "ownership"},
		),
		nativeBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "native_bytes",
				Help:      "Approximate native memory held by owning handles",
			},
		),
		nativeSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "native_geometry_size_bytes",
				Help:      "Approximate native size of owned geometries at creation",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"kind"},
		),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.created, c.finalized, c.releaseFailures, c.live, c.nativeBytes, c.nativeSize,
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

func (c *Collector) Created(kind string, own handle.Ownership, size int64) {
	c.created.WithLabelValues(kind, own.String()).Inc()
	c.live.WithLabelValues(kind, own.String()).Inc()
	c.snap.created.Add(1)
	c.snap.live.Add(1)
	if own == handle.Owned {
		c.nativeBytes.Add(float64(size))
		c.nativeSize.WithLabelValues(kind).Observe(float64(size))
		c.snap.bytes.Add(size)
	}
}

func (c *Collector) Finalized(kind string, own handle.Ownership, trigger handle.Trigger, size int64) {
	c.finalized.WithLabelValues(kind, own.String(), string(trigger)).Inc()
	c.live.WithLabelValues(kind, own.String()).Dec()
	c.snap.finalized.Add(1)
	c.snap.live.Add(-1)
	if own == handle.Owned {
		c.nativeBytes.Sub(float64(size))
		c.snap.bytes.Add(-size)
	}
}

func (c *Collector) ReleaseFailed(kind string, _ error) {
	c.releaseFailures.WithLabelValues(kind).Inc()
	c.snap.failures.Add(1)
}

// Snapshot returns the current totals.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Created:         c.snap.created.Load(),
		Finalized:       c.snap.finalized.Load(),
		ReleaseFailures: c.snap.failures.Load(),
		Live:            c.snap.live.Load(),
		NativeBytes:     c.snap.bytes.Load(),
	}
}

// Handler serves the collector's metrics in the Prometheus exposition
// format from a private registry.
func (c *Collector) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
