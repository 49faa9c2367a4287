package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/findings"
)

func sampleOutput() *RunOutput {
	at := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	return &RunOutput{
		Month:       "2026-08",
		EvaluatedAt: at,
		Findings: []*findings.Finding{{
			ID:          "f-1",
			FindingKey:  "COMP:ocid1.prod:POL-COMP-SPEND-001",
			PolicyID:    "POL-COMP-SPEND-001",
			CheckID:     "forecast-over-soft-cap",
			Severity:    "high",
			Breach:      true,
			ScopeID:     "ocid1.prod",
			ScopeName:   "genai-prod",
			Evidence:    map[string]interface{}{"forecast_eom": 1650.0, "mtd_spend": 165.0},
			Remediation: []string{"review compute shapes", "stop idle databases"},
			EvaluatedAt: at,
		}},
		Metrics: []*findings.MetricsRecord{{
			PolicyID: "POL-DB-LIMIT-002", CheckID: "soft-limit-exceeded",
			ScopeName: "genai-prod", Breach: false,
			Metrics: map[string]interface{}{"effective_count": 3.0}, EvaluatedAt: at,
		}},
		Failures: []*findings.EvaluationFailure{{
			PolicyID: "POL-COMP-SPEND-001", ScopeName: "analytics-dev",
			Stage: findings.StageData, Error: "no cost series in snapshot", OccurredAt: at,
		}},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleOutput()); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}

	var decoded RunOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Month != "2026-08" {
		t.Errorf("Month = %q, want 2026-08", decoded.Month)
	}
	if len(decoded.Findings) != 1 || decoded.Findings[0].FindingKey != "COMP:ocid1.prod:POL-COMP-SPEND-001" {
		t.Errorf("Findings = %+v, want the sample finding", decoded.Findings)
	}
	if len(decoded.Failures) != 1 || decoded.Failures[0].Stage != findings.StageData {
		t.Errorf("Failures = %+v, want the data-stage failure", decoded.Failures)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, sampleOutput()); err != nil {
		t.Fatalf("WriteMarkdown() failed: %v", err)
	}
	report := buf.String()

	for _, want := range []string{
		"# Compliance Report",
		"Analysis month: 2026-08",
		"## Breaches (1)",
		"COMP:ocid1.prod:POL-COMP-SPEND-001",
		// Evidence keys render sorted.
		"forecast_eom=1650, mtd_spend=165",
		"- review compute shapes",
		"## Evaluation Failures (1)",
		"no cost series in snapshot",
		"## Metrics",
		"effective_count=3",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestWriteMarkdown_NoBreaches(t *testing.T) {
	out := &RunOutput{EvaluatedAt: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)}
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, out); err != nil {
		t.Fatalf("WriteMarkdown() failed: %v", err)
	}
	report := buf.String()
	if !strings.Contains(report, "No breaches found.") {
		t.Errorf("report missing the clean bill of health:\n%s", report)
	}
	if strings.Contains(report, "## Evaluation Failures") {
		t.Error("empty run should not render a failures section")
	}
}

func TestCompactMap_Stable(t *testing.T) {
	m := map[string]interface{}{"b": 2.0, "a": 1.0, "c": "x"}
	want := "a=1, b=2, c=x"
	for i := 0; i < 10; i++ {
		if got := compactMap(m); got != want {
			t.Fatalf("compactMap() = %q, want %q", got, want)
		}
	}
	if got := compactMap(nil); got != "-" {
		t.Errorf("compactMap(nil) = %q, want -", got)
	}
}
