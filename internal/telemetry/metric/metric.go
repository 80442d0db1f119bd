// Package metric provides Prometheus metrics for websnap: codec
// throughput, snapshot sizes, and store activity.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics.
type Registry struct {
	// Codec metrics.
	EncodesTotal   *prometheus.CounterVec
	DecodesTotal   *prometheus.CounterVec
	EncodeDuration prometheus.Histogram
	DecodeDuration prometheus.Histogram
	SnapshotBytes  prometheus.Histogram

	// Store metrics.
	StoreOpsTotal  *prometheus.CounterVec
	StoreSnapshots prometheus.Gauge
	StoreBytes     prometheus.Gauge

	reg *prometheus.Registry
}

// NewRegistry creates a metrics registry with all websnap collectors
// registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		EncodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "websnap",
			Name:      "encodes_total",
			Help:      "Snapshot encode operations by outcome.",
		}, []string{"outcome"}),
		DecodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "websnap",
			Name:      "decodes_total",
			Help:      "Snapshot decode operations by outcome.",
		}, []string{"outcome"}),
		EncodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "websnap",
			Name:      "encode_duration_seconds",
			Help:      "Wall time per snapshot encode.",
			Buckets:   prometheus.DefBuckets,
		}),
		DecodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "websnap",
			Name:      "decode_duration_seconds",
			Help:      "Wall time per snapshot decode.",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "websnap",
			Name:      "snapshot_bytes",
			Help:      "Size of produced snapshot buffers.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}),
		StoreOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "websnap",
			Name:      "store_ops_total",
			Help:      "Store operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		StoreSnapshots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "websnap",
			Name:      "store_snapshots",
			Help:      "Snapshots currently retained in the store.",
		}),
		StoreBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "websnap",
			Name:      "store_bytes",
			Help:      "Total container bytes retained in the store.",
		}),
		reg: reg,
	}
}

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// OutcomeOf maps an operation error to its outcome label.
func OutcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// Handler returns an HTTP handler exposing the registry in Prometheus
// text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gather exposes the underlying registry for tests.
func (r *Registry) Gather() prometheus.Gatherer {
	return r.reg
}
