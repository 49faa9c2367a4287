package engine

import "fmt"

// DataUnavailableError reports that a (policy, scope) pair could not bind a
// declared input. The pair transitions to FAILED and is skipped; this is an
// evaluation failure, never a breach.
type DataUnavailableError struct {
	PolicyID string
	Scope    string
	Input    string
	Cause    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for policy %s scope %q (input %s): %v",
		e.PolicyID, e.Scope, e.Input, e.Cause)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Cause
}

// CheckError reports a fault evaluating one check's logic. It is isolated
// to that check: sibling checks and other scopes still evaluate.
type CheckError struct {
	PolicyID string
	CheckID  string
	Scope    string
	Cause    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s/%s failed for scope %q: %v",
		e.PolicyID, e.CheckID, e.Scope, e.Cause)
}

func (e *CheckError) Unwrap() error {
	return e.Cause
}
