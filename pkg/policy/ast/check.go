package ast

import "github.com/luigisaetta/finops-with-oci-ai/pkg/expr"

// Check is one evaluated rule within a policy.
type Check struct {
	// ID is unique within the policy.
	ID string `yaml:"id"`

	// Severity is the ordered severity attached to findings.
	Severity Severity `yaml:"severity"`

	// Description says what the check enforces.
	Description string `yaml:"description"`

	// Evaluate declares the check's data requirements and logic program.
	Evaluate Evaluate `yaml:"evaluate"`

	// Evidence lists field paths extracted from the evaluator bindings
	// into a finding. A missing path becomes a null evidence entry.
	Evidence []string `yaml:"evidence"`

	// Remediation is an ordered list of human-readable suggestions. Never
	// executed by the engine.
	Remediation []string `yaml:"remediation"`

	// Program is the compiled logic, populated at load time.
	Program *expr.Program `yaml:"-"`
}

// Evaluate is a check's evaluate block: declared inputs plus the logic
// program source.
type Evaluate struct {
	Inputs Inputs `yaml:"inputs"`

	// Logic is the expression-language program. It must end up assigning
	// "breach".
	Logic string `yaml:"logic"`
}

// Inputs declares the external data a check needs. Exactly one of
// ResourceType or CostWindow must be set.
type Inputs struct {
	// ResourceType requests a resource inventory snapshot, e.g.
	// "autonomous_database". Bound into the evaluator as "resources".
	ResourceType string `yaml:"resource_type"`

	// Fields lists the resource attributes the check reads.
	Fields []string `yaml:"fields"`

	// GroupBy names the grouping dimension the provider must honor.
	GroupBy string `yaml:"group_by"`

	// CostWindow requests a cost series, e.g. "month_to_date". Bound into
	// the evaluator as "daily_costs" (ordered daily USD amounts).
	CostWindow string `yaml:"cost_window"`

	// Provider optionally names the upstream data provider (MCP server
	// reference in the source documents). Advisory: the engine resolves
	// data through its single configured provider.
	Provider string `yaml:"provider"`
}

// Well-known evaluator binding names supplied by the orchestrator.
const (
	BindingResources  = "resources"
	BindingDailyCosts = "daily_costs"
)

// TemporalBindings are the names the temporal calculator contributes to
// every evaluation context.
var TemporalBindings = []string{
	"today",
	"month_start",
	"month_end",
	"days_observed",
	"remaining_days_in_month",
	"is_month_end",
}

// InputBindings returns the binding names this check's declared inputs
// contribute to the evaluation environment.
func (in *Inputs) InputBindings() []string {
	var names []string
	if in.ResourceType != "" {
		names = append(names, BindingResources)
	}
	if in.CostWindow != "" {
		names = append(names, BindingDailyCosts)
	}
	return names
}
