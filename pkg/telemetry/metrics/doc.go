// Package metrics provides Prometheus metrics for the evaluation engine
// and the HTTP server exposing them in serve mode.
package metrics
