// Package prom exports the bounded store's metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/graphmem/vertexcache/store"
)

// Adapter implements store.Metrics on top of Prometheus collectors.
// All Prometheus metric types are goroutine-safe, so the adapter needs no
// locking of its own.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	removals *prometheus.CounterVec
	entries  prometheus.Gauge
}

// New registers the collectors with reg (nil means the default
// registerer) under the given namespace/subsystem. constLabels may be
// nil; use it to tag per-transaction caches with a shared series.
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Bounded-tier hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Bounded-tier misses",
			ConstLabels: constLabels,
		}),
		removals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "removals_total",
				Help:        "Entries removed from the bounded tier, by cause",
				ConstLabels: constLabels,
			},
			[]string{"cause"},
		),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entries",
			Help:        "Resident entries in the bounded tier",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.removals, a.entries)
	return a
}

func (a *Adapter) Hit()  { a.hits.Inc() }
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict counts a removal under its cause label ("capacity", "replaced",
// "explicit").
func (a *Adapter) Evict(cause store.RemovalCause) {
	a.removals.WithLabelValues(cause.String()).Inc()
}

func (a *Adapter) Size(entries int) { a.entries.Set(float64(entries)) }

var _ store.Metrics = (*Adapter)(nil)
