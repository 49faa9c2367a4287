package engine

import (
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/provider"
)

// PairState is the lifecycle state of one (policy, scope) evaluation pair.
type PairState string

const (
	// StatePending: the scope has been resolved from the selector.
	StatePending PairState = "PENDING"

	// StateDataBound: all declared inputs for every check are fetched.
	StateDataBound PairState = "DATA_BOUND"

	// StateEvaluating: checks are running.
	StateEvaluating PairState = "EVALUATING"

	// StateComplete: every check produced a result (success or isolated
	// check error) and findings are ready for emission.
	StateComplete PairState = "COMPLETE"

	// StateFailed: a required input was unavailable; the pair was skipped
	// and reported as a failed evaluation, not a breach.
	StateFailed PairState = "FAILED"
)

// PairResult is the terminal outcome of one (policy, scope) pair. Each
// pair writes into its own result slot; results are merged only after all
// pairs are terminal.
type PairResult struct {
	PolicyID string
	Scope    provider.Scope
	State    PairState

	Findings []*findings.Finding
	Metrics  []*findings.MetricsRecord
	Failures []*findings.EvaluationFailure
}

// BatchResult aggregates all pair results of one evaluation pass.
type BatchResult struct {
	Pairs []*PairResult
}

// Findings returns every finding across pairs, in pair order.
func (b *BatchResult) Findings() []*findings.Finding {
	var out []*findings.Finding
	for _, pair := range b.Pairs {
		out = append(out, pair.Findings...)
	}
	return out
}

// Metrics returns every metrics record across pairs, in pair order.
func (b *BatchResult) Metrics() []*findings.MetricsRecord {
	var out []*findings.MetricsRecord
	for _, pair := range b.Pairs {
		out = append(out, pair.Metrics...)
	}
	return out
}

// Failures returns every failure record across pairs, in pair order.
func (b *BatchResult) Failures() []*findings.EvaluationFailure {
	var out []*findings.EvaluationFailure
	for _, pair := range b.Pairs {
		out = append(out, pair.Failures...)
	}
	return out
}

// Failed reports whether any pair ended FAILED or recorded a check-level
// evaluation fault. Used by the CLI to choose the process exit code.
func (b *BatchResult) Failed() bool {
	for _, pair := range b.Pairs {
		if pair.State == StateFailed || len(pair.Failures) > 0 {
			return true
		}
	}
	return false
}
