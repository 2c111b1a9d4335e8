// Package metrics exposes Prometheus instrumentation for query execution,
// token usage, and budget consumption. A nil *Collector is a valid no-op, so
// callers never branch on whether metrics are enabled.
package metrics
