// Package metrics exports the engine's allocation and binding counters to
// Prometheus.
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(metrics.NewCollector("myapp"))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/typeclass"
)

// Collector reads typeclass.ReadStats on every scrape.
type Collector struct {
	allocated *prometheus.Desc
	released  *prometheus.Desc
	live      *prometheus.Desc
	lookups   *prometheus.Desc

	read func() typeclass.Stats
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector whose metric names start with
// namespace_typeclass_.
func NewCollector(namespace string) *Collector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "typeclass", n) }
	return &Collector{
		allocated: prometheus.NewDesc(name("adapters_allocated_total"), "Adapters created by New, Clone, CopyFrom and MoveFrom.", nil, nil),
		released:  prometheus.NewDesc(name("adapters_released_total"), "Adapters destroyed or vacated by a move.", nil, nil),
		live:      prometheus.NewDesc(name("adapters_live"), "Adapters allocated and not yet released.", nil, nil),
		lookups:   prometheus.NewDesc(name("binder_lookups_total"), "Binder memo lookups by result.", []string{"result"}, nil),
		read:      typeclass.ReadStats,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocated
	ch <- c.released
	ch <- c.live
	ch <- c.lookups
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.read()
	ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(s.Allocated))
	ch <- prometheus.MustNewConstMetric(c.released, prometheus.CounterValue, float64(s.Released))
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.Live()))
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(s.BinderHits), "hit")
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(s.BinderMisses), "miss")
}
