// Package metric provides Prometheus metrics for Dew.
//
//   - prometheus.go: registry, request and mutation counters, /metrics handler
//   - collector.go: scrape-time gauges for store size, generation and snapshots
//
// Metrics are exposed at /metrics in Prometheus text format.
package metric
