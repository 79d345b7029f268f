// Package metrics records reindex outcomes as Prometheus metrics.
//
// Recorder keeps its own registry. The scheduler exposes it over HTTP through
// Handler, and one-shot runs send it to a Pushgateway with Push when
// METRICS_PUSHGATEWAY_URL is set.
package metrics
