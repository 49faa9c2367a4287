// Package findings defines the engine's output records: findings (breach
// records), per-check metrics records and evaluation failure records, plus
// the Sink boundary they are published through. Records are immutable and
// append-only: re-evaluation produces new records, never mutations.
package findings

import (
	"context"
	"time"
)

// Finding is one breach of one check for one scope at one point in time.
type Finding struct {
	// ID is a UUID v4 assigned at emission.
	ID string `json:"id"`

	// FindingKey is rendered from the policy's finding_key template using
	// resolved scope identifiers, e.g. "COMP:ocid1...:POL-COMP-SPEND-001".
	FindingKey string `json:"finding_key"`

	// PolicyID and CheckID identify the breached check.
	PolicyID string `json:"policy_id"`
	CheckID  string `json:"check_id"`

	// Severity is the check's declared severity.
	Severity string `json:"severity"`

	// Breach is always true for emitted findings; kept explicit so
	// downstream consumers need no out-of-band convention.
	Breach bool `json:"breach"`

	// ScopeID and ScopeName identify the evaluated scope instance.
	ScopeID   string `json:"scope_id"`
	ScopeName string `json:"scope_name"`

	// Evidence maps the check's declared evidence paths to their resolved
	// values. A path that did not resolve is present with a null value.
	Evidence map[string]interface{} `json:"evidence"`

	// Metrics maps the policy's declared metric names to resolved values.
	Metrics map[string]interface{} `json:"metrics"`

	// Remediation carries the check's suggestions verbatim.
	Remediation []string `json:"remediation,omitempty"`

	// EvaluatedAt is the timezone-aware evaluation timestamp.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// MetricsRecord surfaces a check's metrics regardless of breach state, so
// downstream consumers get trend data (e.g. forecast_eom) even while the
// check passes.
type MetricsRecord struct {
	PolicyID    string                 `json:"policy_id"`
	CheckID     string                 `json:"check_id"`
	ScopeID     string                 `json:"scope_id"`
	ScopeName   string                 `json:"scope_name"`
	Breach      bool                   `json:"breach"`
	Metrics     map[string]interface{} `json:"metrics"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
}

// FailureStage identifies where an evaluation failure occurred.
type FailureStage string

const (
	// StageData: a declared input could not be fetched; the whole
	// (policy, scope) pair was skipped.
	StageData FailureStage = "data"

	// StageCheck: one check's logic failed; sibling checks still ran.
	StageCheck FailureStage = "check"
)

// EvaluationFailure records an isolated evaluation fault alongside the
// findings, so operators see both compliance state and evaluation health.
type EvaluationFailure struct {
	PolicyID   string       `json:"policy_id"`
	CheckID    string       `json:"check_id,omitempty"`
	ScopeID    string       `json:"scope_id"`
	ScopeName  string       `json:"scope_name"`
	Stage      FailureStage `json:"stage"`
	Error      string       `json:"error"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Sink is the downstream boundary findings are published through
// (reporting, ticketing, dashboards). Publishing is append-only.
type Sink interface {
	PublishFinding(ctx context.Context, finding *Finding) error
	PublishMetrics(ctx context.Context, record *MetricsRecord) error
	PublishFailure(ctx context.Context, failure *EvaluationFailure) error
	Close() error
}
