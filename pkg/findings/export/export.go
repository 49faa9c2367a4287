// Package export renders evaluation output for human and machine
// consumption: a JSON document for downstream tooling and a Markdown
// compliance report of the kind the FinOps review process circulates.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
)

// RunOutput is the complete result of one evaluation pass.
type RunOutput struct {
	Month       string                        `json:"month,omitempty"`
	EvaluatedAt time.Time                     `json:"evaluated_at"`
	Findings    []*findings.Finding           `json:"findings"`
	Metrics     []*findings.MetricsRecord     `json:"metrics"`
	Failures    []*findings.EvaluationFailure `json:"failures"`
}

// WriteJSON writes the run output as indented JSON.
func WriteJSON(w io.Writer, out *RunOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// WriteMarkdown writes a Markdown compliance report: a findings table per
// policy, a failure section when any evaluation failed, and the metrics for
// trend context.
func WriteMarkdown(w io.Writer, out *RunOutput) error {
	fmt.Fprintf(w, "# Compliance Report\n\n")
	if out.Month != "" {
		fmt.Fprintf(w, "Analysis month: %s\n\n", out.Month)
	}
	fmt.Fprintf(w, "Evaluated at: %s\n\n", out.EvaluatedAt.Format(time.RFC3339))

	if len(out.Findings) == 0 {
		fmt.Fprintf(w, "No breaches found.\n\n")
	} else {
		fmt.Fprintf(w, "## Breaches (%d)\n\n", len(out.Findings))
		fmt.Fprintf(w, "| Finding Key | Check | Severity | Scope | Evidence |\n")
		fmt.Fprintf(w, "|---|---|---|---|---|\n")
		for _, f := range out.Findings {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				f.FindingKey, f.CheckID, f.Severity, f.ScopeName, compactMap(f.Evidence))
		}
		fmt.Fprintln(w)

		for _, f := range out.Findings {
			if len(f.Remediation) == 0 {
				continue
			}
			fmt.Fprintf(w, "### %s: %s\n\n", f.FindingKey, f.CheckID)
			for _, r := range f.Remediation {
				fmt.Fprintf(w, "- %s\n", r)
			}
			fmt.Fprintln(w)
		}
	}

	if len(out.Failures) > 0 {
		fmt.Fprintf(w, "## Evaluation Failures (%d)\n\n", len(out.Failures))
		fmt.Fprintf(w, "| Policy | Check | Scope | Stage | Error |\n")
		fmt.Fprintf(w, "|---|---|---|---|---|\n")
		for _, fail := range out.Failures {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				fail.PolicyID, fail.CheckID, fail.ScopeName, fail.Stage, fail.Error)
		}
		fmt.Fprintln(w)
	}

	if len(out.Metrics) > 0 {
		fmt.Fprintf(w, "## Metrics\n\n")
		fmt.Fprintf(w, "| Policy | Check | Scope | Breach | Metrics |\n")
		fmt.Fprintf(w, "|---|---|---|---|---|\n")
		for _, m := range out.Metrics {
			fmt.Fprintf(w, "| %s | %s | %s | %v | %s |\n",
				m.PolicyID, m.CheckID, m.ScopeName, m.Breach, compactMap(m.Metrics))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// compactMap renders a map as "k=v, k=v" with sorted keys so report output
// is stable across runs.
func compactMap(m map[string]interface{}) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
