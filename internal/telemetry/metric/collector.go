package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreStats is the storage state sampled at scrape time.
type StoreStats struct {
	Todos            int
	Generation       uint64
	SnapshotWrites   uint64
	SnapshotFailures uint64
	LastSnapshotAt   time.Time
}

// Collector exposes storage state as metrics.
// Values are read from the source on every scrape rather than pushed.
type Collector struct {
	source func() StoreStats

	todos            *prometheus.Desc
	generation       *prometheus.Desc
	snapshotWrites   *prometheus.Desc
	snapshotFailures *prometheus.Desc
	lastSnapshot     *prometheus.Desc
}

// NewCollector creates a collector that samples source on each scrape.
func NewCollector(source func() StoreStats) *Collector {
	return &Collector{
		source: source,
		todos: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "todos"),
			"Number of todos in the store.", nil, nil),
		generation: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "generation"),
			"Current generation counter.", nil, nil),
		snapshotWrites: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "snapshot", "writes_total"),
			"Successful snapshot writes.", nil, nil),
		snapshotFailures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "snapshot", "failures_total"),
			"Failed snapshot writes.", nil, nil),
		lastSnapshot: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "snapshot", "last_success_timestamp_seconds"),
			"Unix time of the last successful snapshot write, 0 if none.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.todos
	ch <- c.generation
	ch <- c.snapshotWrites
	ch <- c.snapshotFailures
	ch <- c.lastSnapshot
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source()

	var last float64
	if !s.LastSnapshotAt.IsZero() {
		last = float64(s.LastSnapshotAt.UnixNano()) / 1e9
	}

	ch <- prometheus.MustNewConstMetric(c.todos, prometheus.GaugeValue, float64(s.Todos))
	ch <- prometheus.MustNewConstMetric(c.generation, prometheus.GaugeValue, float64(s.Generation))
	ch <- prometheus.MustNewConstMetric(c.snapshotWrites, prometheus.CounterValue, float64(s.SnapshotWrites))
	ch <- prometheus.MustNewConstMetric(c.snapshotFailures, prometheus.CounterValue, float64(s.SnapshotFailures))
	ch <- prometheus.MustNewConstMetric(c.lastSnapshot, prometheus.GaugeValue, last)
}
