// Package validator performs structural and semantic validation of policy
// documents. Validation is static: no check logic is executed, yet every
// name a logic program references is proven resolvable before the policy is
// admitted for evaluation.
package validator

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	perrors "github.com/luigisaetta/finops-with-oci-ai/pkg/policy/errors"
)

// placeholderPattern matches {name} placeholders in finding key templates.
var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// findingKeyPlaceholders are the names resolvable from scope metadata when
// a finding key is rendered.
var findingKeyPlaceholders = map[string]bool{
	"policy_id":        true,
	"check_id":         true,
	"scope_id":         true,
	"scope_name":       true,
	"compartment_id":   true,
	"compartment_name": true,
}

// ValidateStructure checks required fields, enum values, glob patterns and
// duplicate check ids. It accumulates every problem before returning.
func ValidateStructure(doc *ast.PolicyDocument) error {
	errs := &perrors.List{}

	if doc.ID == "" {
		errs.Add(&perrors.SchemaError{Field: "id", Message: "required"})
	}
	if doc.Title == "" {
		errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "title", Message: "required"})
	}
	if doc.Version < 1 {
		errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "version", Message: "must be a positive integer"})
	}
	if !ast.KnownStatus(doc.Status) {
		errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "status",
			Message: fmt.Sprintf("unknown status %q (expected proposed, active or deprecated)", doc.Status)})
	}
	if doc.Scope.Kind == "" {
		errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "scope.kind", Message: "required"})
	}
	if _, err := time.LoadLocation(doc.Timezone); err != nil {
		errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "timezone",
			Message: fmt.Sprintf("unknown timezone %q", doc.Timezone)})
	}

	validateGlobs(doc, "scope.include", doc.Scope.Include, errs)
	validateGlobs(doc, "scope.exclude", doc.Scope.Exclude, errs)

	if len(doc.Checks) == 0 {
		errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "checks", Message: "at least one check is required"})
	}

	seen := make(map[string]bool, len(doc.Checks))
	for i, check := range doc.Checks {
		field := fmt.Sprintf("checks[%d]", i)
		if check.ID == "" {
			errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: field + ".id", Message: "required"})
		} else if seen[check.ID] {
			errs.Add(&perrors.DuplicateIDError{PolicyID: doc.ID, CheckID: check.ID})
		} else {
			seen[check.ID] = true
		}
		if !check.Severity.Known() {
			errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: field + ".severity",
				Message: fmt.Sprintf("unknown severity %q (expected low, medium, high or critical)", check.Severity)})
		}
		if check.Evaluate.Logic == "" {
			errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: field + ".evaluate.logic", Message: "required"})
		}
		in := check.Evaluate.Inputs
		if in.ResourceType == "" && in.CostWindow == "" {
			errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: field + ".evaluate.inputs",
				Message: "either resource_type or cost_window is required"})
		}
	}

	if doc.Outputs.FindingKey == "" {
		errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "outputs.finding_key", Message: "required"})
	} else {
		for _, m := range placeholderPattern.FindAllStringSubmatch(doc.Outputs.FindingKey, -1) {
			if !findingKeyPlaceholders[m[1]] {
				errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: "outputs.finding_key",
					Message: fmt.Sprintf("unresolvable placeholder {%s}", m[1])})
			}
		}
	}

	for i := range doc.Exemptions.Rules {
		rule := &doc.Exemptions.Rules[i]
		if rule.Match != ast.MatchAny && rule.Match != ast.MatchAll {
			errs.Add(&perrors.SchemaError{PolicyID: doc.ID,
				Field:   fmt.Sprintf("exemptions.rules[%d].match", i),
				Message: fmt.Sprintf("unknown match mode %q (expected any or all)", rule.Match)})
		}
		if rule.ExpiresAt != "" {
			if _, err := time.Parse("2006-01-02", rule.ExpiresAt); err != nil {
				errs.Add(&perrors.SchemaError{PolicyID: doc.ID,
					Field:   fmt.Sprintf("exemptions.rules[%d].expires_at", i),
					Message: fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", rule.ExpiresAt)})
			}
		}
	}

	return errs.ToError()
}

// validateGlobs rejects malformed glob patterns up front so selector
// resolution cannot fail at evaluation time.
func validateGlobs(doc *ast.PolicyDocument, field string, patterns []string, errs *perrors.List) {
	for _, pattern := range patterns {
		if _, err := path.Match(pattern, "probe"); err != nil {
			errs.Add(&perrors.SchemaError{PolicyID: doc.ID, Field: field,
				Message: fmt.Sprintf("malformed glob %q", pattern)})
		}
	}
}

// ValidateReferences proves, without executing any program, that every name
// a check's logic references resolves against the policy's parameters, the
// check's declared input bindings, the temporal bindings, or a binding the
// program itself assigned earlier. Evidence paths and metric names are
// checked the same way against the program's own assignments.
func ValidateReferences(doc *ast.PolicyDocument) error {
	errs := &perrors.List{}

	for _, check := range doc.Checks {
		if check.Program == nil {
			continue // logic missing or unparseable; reported elsewhere
		}

		resolvable := make(map[string]bool)
		for name := range doc.Parameters {
			resolvable[name] = true
		}
		for _, name := range check.Evaluate.Inputs.InputBindings() {
			resolvable[name] = true
		}
		for _, name := range ast.TemporalBindings {
			resolvable[name] = true
		}

		for _, name := range check.Program.FreeNames() {
			if !resolvable[name] {
				errs.Add(&perrors.ReferenceError{PolicyID: doc.ID, CheckID: check.ID, Name: name,
					Message: "does not resolve against parameters, declared inputs or temporal bindings"})
			}
		}

		if !check.Program.AssignsBreach() {
			errs.Add(&perrors.ReferenceError{PolicyID: doc.ID, CheckID: check.ID, Name: "breach",
				Message: "is never assigned by the logic program"})
		}

		assigned := assignedNames(check)
		for name := range resolvable {
			assigned[name] = true
		}
		for _, evidencePath := range check.Evidence {
			root, _, _ := strings.Cut(evidencePath, ".")
			if !assigned[root] {
				errs.Add(&perrors.ReferenceError{PolicyID: doc.ID, CheckID: check.ID, Name: evidencePath,
					Message: "evidence path does not start at a logic binding or input"})
			}
		}
	}

	// A declared metric must be assigned by at least one check's logic;
	// checks that never assign it simply omit it from their metrics record.
	assignedAnywhere := make(map[string]bool)
	for _, check := range doc.Checks {
		if check.Program == nil {
			continue
		}
		for name := range assignedNames(check) {
			assignedAnywhere[name] = true
		}
	}
	for _, metric := range doc.Outputs.Metrics {
		if !assignedAnywhere[metric] {
			errs.Add(&perrors.ReferenceError{PolicyID: doc.ID, Name: metric,
				Message: "metric is not assigned by any check's logic"})
		}
	}

	return errs.ToError()
}

// assignedNames returns the names a check's program assigns.
func assignedNames(check *ast.Check) map[string]bool {
	names := make(map[string]bool)
	for _, stmt := range check.Program.Statements {
		names[stmt.Name] = true
	}
	return names
}
