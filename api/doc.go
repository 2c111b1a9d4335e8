// Package api exposes the orchestration core over HTTP: query submission,
// budget status, health, and Prometheus metrics.
package api
