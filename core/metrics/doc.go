// Package metrics exports table, reconcile and validation counters to
// Prometheus. A Metrics value is passed to tables.NewStore and
// reconcile.NewEngine as their observer and served on GET /metrics.
package metrics
