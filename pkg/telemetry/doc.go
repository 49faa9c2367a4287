// Package telemetry groups the observability surface of the evaluation
// engine.
//
//   - logging: structured slog setup (json or text handlers)
//   - metrics: Prometheus collectors for passes, findings and failures,
//     plus the /metrics HTTP server
//   - health: liveness and readiness probes for the serve daemon
package telemetry
