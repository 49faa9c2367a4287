// Package ast defines the typed representation of a cost-governance policy
// document: scope, parameters, checks, exemptions and outputs. The types
// are pure data; parsing lives in pkg/policy/parser and validation in
// pkg/policy/validator.
package ast

// Status is the lifecycle state of a policy document. Only active policies
// take part in scheduled evaluation; the others are loaded but skipped.
type Status string

const (
	StatusProposed   Status = "proposed"
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

// KnownStatus reports whether s is one of the recognized status values.
func KnownStatus(s Status) bool {
	switch s {
	case StatusProposed, StatusActive, StatusDeprecated:
		return true
	}
	return false
}

// PolicyDocument is one declarative policy: identity, scope, parameters,
// an ordered list of checks, exemption rules and output declarations.
// Documents are immutable once loaded; concurrent evaluations share them
// by reference without synchronization.
type PolicyDocument struct {
	// ID is the globally unique policy identifier, e.g. "POL-COMP-SPEND-001".
	ID string `yaml:"id"`

	// Version is monotonic per ID.
	Version int `yaml:"version"`

	// Title is the human-readable policy name.
	Title string `yaml:"title"`

	// Status is the lifecycle state (proposed, active, deprecated).
	Status Status `yaml:"status"`

	// Scope selects the concrete targets the policy evaluates against.
	Scope Scope `yaml:"scope"`

	// Timezone is the IANA zone all temporal logic for this policy uses,
	// e.g. "Europe/Rome".
	Timezone string `yaml:"timezone"`

	// Parameters are the named scalars and lists checks may reference.
	Parameters map[string]interface{} `yaml:"parameters"`

	// Checks are evaluated independently, in declaration order.
	Checks []*Check `yaml:"checks"`

	// Exemptions are the policy-wide override rules applied as a final
	// filter after a check reports a breach.
	Exemptions Exemptions `yaml:"exemptions"`

	// Outputs declares the finding key template and surfaced metrics.
	Outputs Outputs `yaml:"outputs"`

	// SourcePath is the file the document was loaded from, for
	// diagnostics. Empty for documents parsed from memory.
	SourcePath string `yaml:"-"`
}

// Scope declares what kind of target a policy applies to and which named
// instances are included. Exclude always wins over include on conflict.
type Scope struct {
	// Kind is the scope unit, e.g. "compartment".
	Kind string `yaml:"kind"`

	// Include is a list of glob patterns; "*" matches all instances.
	Include []string `yaml:"include"`

	// Exclude is a list of glob patterns removed after includes resolve.
	Exclude []string `yaml:"exclude"`
}

// Outputs declares how findings are keyed and which evaluator bindings are
// surfaced as metrics.
type Outputs struct {
	// FindingKey is a template rendered per scope instance, e.g.
	// "COMP:{compartment_id}:{policy_id}".
	FindingKey string `yaml:"finding_key"`

	// Metrics lists evaluator binding names emitted unconditionally for
	// every evaluated check, breach or not.
	Metrics []string `yaml:"metrics"`
}

// IsActive reports whether the policy takes part in scheduled evaluation.
func (p *PolicyDocument) IsActive() bool {
	return p.Status == StatusActive
}
