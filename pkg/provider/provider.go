// Package provider defines the boundary to the external resource/cost data
// collaborator and ships two implementations: a YAML snapshot provider for
// offline/fixture evaluation and a retrying decorator for flaky upstreams.
// The engine treats the provider as a pull interface and never caches
// across evaluation passes.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Scope is one concrete resolved target, e.g. a compartment.
type Scope struct {
	// ID is the provider-native identifier (an OCID for compartments).
	ID string `yaml:"id"`

	// Name is the display name selector globs match against.
	Name string `yaml:"name"`

	// Kind is the scope unit, e.g. "compartment".
	Kind string `yaml:"kind"`
}

// Resource is one inventory record in a snapshot. The record order returned
// by a provider is stable: evaluation results must be bit-identical across
// runs over the same snapshot.
type Resource struct {
	// DisplayName is the human-readable resource name.
	DisplayName string `yaml:"display_name"`

	// ID is the provider-native resource identifier.
	ID string `yaml:"id"`

	// Type is the resource type, e.g. "autonomous_database".
	Type string `yaml:"type"`

	// Attributes holds type-specific fields such as license_model.
	Attributes map[string]interface{} `yaml:"attributes"`

	// Tags are the combined defined and freeform tags.
	Tags map[string]string `yaml:"tags"`
}

// CostPoint is one day of spend for a scope.
type CostPoint struct {
	// Date is the calendar day, "YYYY-MM-DD".
	Date string `yaml:"date"`

	// AmountUSD is the spend amount in USD. Amount, not quantity.
	AmountUSD float64 `yaml:"amount_usd"`
}

// Window is a date interval for cost series requests, inclusive on both
// ends.
type Window struct {
	Start time.Time
	End   time.Time
}

// Provider is the pull interface to the cost/resource data collaborator.
// Implementations must return stable-ordered results.
type Provider interface {
	// ListScopes returns every scope instance of the given kind.
	ListScopes(ctx context.Context, kind string) ([]Scope, error)

	// ListResources returns the resource inventory of one scope for one
	// resource type, restricted to the requested fields where the
	// upstream supports projection.
	ListResources(ctx context.Context, scope Scope, resourceType string, fields []string) ([]Resource, error)

	// CostSeries returns daily USD amounts for one scope within the
	// window, ordered by date ascending.
	CostSeries(ctx context.Context, scope Scope, window Window) ([]CostPoint, error)
}

// UnavailableError reports that a declared input could not be satisfied for
// a scope. The orchestrator converts it into a FAILED pair, never a breach.
type UnavailableError struct {
	Scope string
	What  string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for scope %q: %s", e.Scope, e.What)
}
