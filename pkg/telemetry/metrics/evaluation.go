package metrics

import (
	"time"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks the evaluation engine's health and output volume.
//
// Metrics:
//   - finops_evaluation_passes_total: Completed evaluation passes
//   - finops_evaluation_pairs_total: (policy, scope) pairs by terminal state
//   - finops_findings_total: Emitted findings by policy and severity
//   - finops_check_failures_total: Isolated evaluation failures by stage
//   - finops_check_duration_seconds: Per-check evaluation duration
type EvaluationMetrics struct {
	passesTotal *prometheus.CounterVec

	pairsTotal *prometheus.CounterVec

	findingsTotal *prometheus.CounterVec

	failuresTotal *prometheus.CounterVec

	checkDuration *prometheus.HistogramVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		passesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_passes_total",
				Help:      "Total number of completed evaluation passes",
			},
			[]string{"trigger"},
		),

		pairsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_pairs_total",
				Help:      "Total number of evaluated (policy, scope) pairs by terminal state",
			},
			[]string{"policy_id", "state"},
		),

		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "findings_total",
				Help:      "Total number of emitted findings",
			},
			[]string{"policy_id", "severity"},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "check_failures_total",
				Help:      "Total number of isolated evaluation failures",
			},
			[]string{"policy_id", "stage"},
		),

		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "check_duration_seconds",
				Help:      "Duration of one check's logic evaluation in seconds",
				// Logic programs run over in-memory snapshots and finish
				// well under a second.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~400ms
			},
			[]string{"policy_id", "check_id"},
		),
	}

	registry.MustRegister(
		em.passesTotal,
		em.pairsTotal,
		em.findingsTotal,
		em.failuresTotal,
		em.checkDuration,
	)

	return em
}

// RecordPass records a completed evaluation pass. Trigger is "manual" for
// CLI runs and "scheduled" for cron-driven passes.
func (em *EvaluationMetrics) RecordPass(trigger string) {
	if em == nil {
		return
	}
	em.passesTotal.WithLabelValues(trigger).Inc()
}

// RecordPair records one (policy, scope) pair reaching a terminal state.
func (em *EvaluationMetrics) RecordPair(policyID, state string) {
	if em == nil {
		return
	}
	em.pairsTotal.WithLabelValues(policyID, state).Inc()
}

// RecordFinding records one emitted finding.
func (em *EvaluationMetrics) RecordFinding(policyID, severity string) {
	if em == nil {
		return
	}
	em.findingsTotal.WithLabelValues(policyID, severity).Inc()
}

// RecordFailure records one isolated evaluation failure ("data" or "check").
func (em *EvaluationMetrics) RecordFailure(policyID, stage string) {
	if em == nil {
		return
	}
	em.failuresTotal.WithLabelValues(policyID, stage).Inc()
}

// RecordCheckDuration records how long one check's logic evaluation took.
func (em *EvaluationMetrics) RecordCheckDuration(policyID, checkID string, duration time.Duration) {
	if em == nil {
		return
	}
	em.checkDuration.WithLabelValues(policyID, checkID).Observe(duration.Seconds())
}
