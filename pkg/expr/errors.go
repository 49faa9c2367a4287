package expr

import "fmt"

// ParseError reports a syntax error in a logic program.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// UnboundNameError reports a reference to a name that is not bound in the
// evaluation environment. Static validation makes this unreachable for
// well-formed policies; if it occurs at runtime it indicates an internal
// consistency failure between the validator and the evaluator.
type UnboundNameError struct {
	Name string
}

func (e *UnboundNameError) Error() string {
	return fmt.Sprintf("unbound name %q", e.Name)
}

// TypeError reports an operation applied to values of an unsupported type,
// such as sum over non-numeric elements.
type TypeError struct {
	Op      string
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error in %s: %s", e.Op, e.Message)
}

// DivisionByZeroError reports a division whose right operand evaluated to
// zero. The evaluator fails loudly rather than producing NaN so that a
// missing min_days_observed guard surfaces as a check failure.
type DivisionByZeroError struct{}

func (e *DivisionByZeroError) Error() string {
	return "division by zero"
}
