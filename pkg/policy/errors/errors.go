// Package errors defines the typed errors produced while loading and
// validating policy documents. Validation accumulates every problem in a
// document instead of stopping at the first, so authors see the full list
// in one pass.
package errors

import (
	"fmt"
	"strings"
)

// SchemaError reports a missing or malformed field in a policy document.
type SchemaError struct {
	PolicyID string
	Field    string
	Message  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: field %q: %s", policyLabel(e.PolicyID), e.Field, e.Message)
}

// ReferenceError reports check logic (or an output template) referencing a
// name that cannot resolve against parameters, declared inputs or builtins.
type ReferenceError struct {
	PolicyID string
	CheckID  string
	Name     string
	Message  string
}

func (e *ReferenceError) Error() string {
	where := policyLabel(e.PolicyID)
	if e.CheckID != "" {
		where += "/" + e.CheckID
	}
	return fmt.Sprintf("reference error in %s: %q %s", where, e.Name, e.Message)
}

// DuplicateIDError reports two checks sharing an id within one policy.
type DuplicateIDError struct {
	PolicyID string
	CheckID  string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate check id %q in %s", e.CheckID, policyLabel(e.PolicyID))
}

func policyLabel(id string) string {
	if id == "" {
		return "policy"
	}
	return "policy " + id
}

// List accumulates validation errors for one document.
type List struct {
	Errors []error
}

// Add appends an error to the list. Nil errors are ignored.
func (l *List) Add(err error) {
	if err != nil {
		l.Errors = append(l.Errors, err)
	}
}

// HasErrors reports whether any error was accumulated.
func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

// Error implements the error interface, listing every accumulated error.
func (l *List) Error() string {
	if !l.HasErrors() {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d error(s):\n", len(l.Errors))
	for i, err := range l.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ToError returns nil when the list is empty, otherwise the list itself.
func (l *List) ToError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}
