package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/expr"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/provider"
)

// renderFindingKey fills the policy's finding_key template with resolved
// scope identifiers. The compartment_* placeholders are aliases kept for
// templates written against the original compartment-scoped policies.
func renderFindingKey(template string, doc *ast.PolicyDocument, check *ast.Check, scope provider.Scope) string {
	replacer := strings.NewReplacer(
		"{policy_id}", doc.ID,
		"{check_id}", check.ID,
		"{scope_id}", scope.ID,
		"{scope_name}", scope.Name,
		"{compartment_id}", scope.ID,
		"{compartment_name}", scope.Name,
	)
	return replacer.Replace(template)
}

// newFinding assembles a finding from a breaching check result. Evidence
// paths that do not resolve are kept as null entries so the finding shape
// stays stable across evaluations.
func newFinding(doc *ast.PolicyDocument, check *ast.Check, scope provider.Scope, result *expr.Result, evaluatedAt time.Time) *findings.Finding {
	return &findings.Finding{
		ID:          uuid.NewString(),
		FindingKey:  renderFindingKey(doc.Outputs.FindingKey, doc, check, scope),
		PolicyID:    doc.ID,
		CheckID:     check.ID,
		Severity:    string(check.Severity),
		Breach:      true,
		ScopeID:     scope.ID,
		ScopeName:   scope.Name,
		Evidence:    extractEvidence(check.Evidence, result.Bindings),
		Metrics:     extractMetrics(doc.Outputs.Metrics, result.Bindings),
		Remediation: check.Remediation,
		EvaluatedAt: evaluatedAt,
	}
}

// newMetricsRecord surfaces the declared metrics of one check evaluation,
// breach or not.
func newMetricsRecord(doc *ast.PolicyDocument, check *ast.Check, scope provider.Scope, result *expr.Result, evaluatedAt time.Time) *findings.MetricsRecord {
	return &findings.MetricsRecord{
		PolicyID:    doc.ID,
		CheckID:     check.ID,
		ScopeID:     scope.ID,
		ScopeName:   scope.Name,
		Breach:      result.Breach,
		Metrics:     extractMetrics(doc.Outputs.Metrics, result.Bindings),
		EvaluatedAt: evaluatedAt,
	}
}

// extractEvidence resolves each declared evidence path against the
// evaluator bindings. Unresolvable paths become explicit null entries.
func extractEvidence(paths []string, bindings map[string]interface{}) map[string]interface{} {
	if len(paths) == 0 {
		return nil
	}
	evidence := make(map[string]interface{}, len(paths))
	for _, path := range paths {
		value, ok := lookupPath(bindings, path)
		if !ok {
			evidence[path] = nil
			continue
		}
		evidence[path] = value
	}
	return evidence
}

// extractMetrics picks the declared metric bindings that this check's
// program actually assigned. Names assigned only by sibling checks are
// omitted from this record.
func extractMetrics(names []string, bindings map[string]interface{}) map[string]interface{} {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		if value, ok := bindings[name]; ok {
			out[name] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
