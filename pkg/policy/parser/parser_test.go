package parser

import (
	"strings"
	"testing"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	policyerrors "github.com/luigisaetta/finops-with-oci-ai/pkg/policy/errors"
)

const validPolicy = `
id: POL-TEST-001
version: 2
title: Test spend policy
status: active
timezone: Europe/Rome
scope:
  kind: compartment
  include: ["genai-*"]
  exclude: ["genai-sandbox"]
parameters:
  cap_usd: 400
  min_days: 3
checks:
  - id: forecast-over-cap
    severity: high
    evaluate:
      inputs:
        cost_window: month_to_date
      logic: |
        mtd_spend = sum(daily_costs)
        avg_daily = mtd_spend / days_observed if days_observed > 0 else 0
        forecast_eom = mtd_spend + avg_daily * remaining_days_in_month
        breach = days_observed >= min_days and forecast_eom > cap_usd
    evidence:
      - mtd_spend
      - forecast_eom
exemptions:
  tags_any: ["CostApproved"]
outputs:
  finding_key: "COMP:{compartment_id}:{policy_id}"
  metrics:
    - forecast_eom
`

func TestLoad_ValidPolicy(t *testing.T) {
	doc, err := Load([]byte(validPolicy))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if doc.ID != "POL-TEST-001" {
		t.Errorf("ID = %q, want POL-TEST-001", doc.ID)
	}
	if doc.Version != 2 {
		t.Errorf("Version = %d, want 2", doc.Version)
	}
	if doc.Status != ast.StatusActive {
		t.Errorf("Status = %q, want active", doc.Status)
	}
	if doc.Timezone != "Europe/Rome" {
		t.Errorf("Timezone = %q, want Europe/Rome", doc.Timezone)
	}
	if len(doc.Checks) != 1 {
		t.Fatalf("len(Checks) = %d, want 1", len(doc.Checks))
	}

	check := doc.Checks[0]
	if check.ID != "forecast-over-cap" {
		t.Errorf("Check.ID = %q, want forecast-over-cap", check.ID)
	}
	if check.Severity != ast.SeverityHigh {
		t.Errorf("Check.Severity = %q, want high", check.Severity)
	}
	if check.Program == nil {
		t.Fatal("Check.Program is nil, want compiled logic")
	}

	rules := doc.Exemptions.AllRules()
	if len(rules) != 1 || rules[0].Tags[0] != "CostApproved" {
		t.Errorf("AllRules() = %v, want the tags_any shorthand rule", rules)
	}
}

func TestLoad_Defaults(t *testing.T) {
	minimal := `
id: POL-MIN-001
version: 1
title: Minimal
status: proposed
scope:
  kind: compartment
checks:
  - id: always-fine
    severity: low
    evaluate:
      inputs:
        resource_type: autonomous_database
      logic: |
        breach = count(resources) < 0
outputs:
  finding_key: "{scope_id}:{policy_id}"
`
	doc, err := Load([]byte(minimal))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if doc.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC default", doc.Timezone)
	}
	if len(doc.Scope.Include) != 1 || doc.Scope.Include[0] != "*" {
		t.Errorf("Scope.Include = %v, want [*] default", doc.Scope.Include)
	}
}

func TestLoad_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		mangle  func(string) string
		wantMsg string
	}{
		{
			"missing title",
			func(s string) string { return strings.Replace(s, "title: Test spend policy\n", "", 1) },
			`"title"`,
		},
		{
			"unknown status",
			func(s string) string { return strings.Replace(s, "status: active", "status: experimental", 1) },
			"unknown status",
		},
		{
			"bad timezone",
			func(s string) string { return strings.Replace(s, "Europe/Rome", "Mars/Olympus", 1) },
			"unknown timezone",
		},
		{
			"bad severity",
			func(s string) string { return strings.Replace(s, "severity: high", "severity: urgent", 1) },
			"unknown severity",
		},
		{
			"zero version",
			func(s string) string { return strings.Replace(s, "version: 2", "version: 0", 1) },
			"positive",
		},
		{
			"bad finding key placeholder",
			func(s string) string { return strings.Replace(s, "{compartment_id}", "{region}", 1) },
			"{region}",
		},
		{
			"malformed glob",
			func(s string) string { return strings.Replace(s, `["genai-*"]`, `["genai-["]`, 1) },
			"malformed glob",
		},
		{
			"bad exemption expiry",
			func(s string) string {
				return strings.Replace(s, `tags_any: ["CostApproved"]`,
					"rules:\n    - tags: [\"CostApproved\"]\n      expires_at: \"31/12/2026\"", 1)
			},
			"invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.mangle(validPolicy)))
			if err == nil {
				t.Fatal("Load() succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_AccumulatesErrors(t *testing.T) {
	mangled := strings.Replace(validPolicy, "title: Test spend policy\n", "", 1)
	mangled = strings.Replace(mangled, "status: active", "status: experimental", 1)

	_, err := Load([]byte(mangled))
	if err == nil {
		t.Fatal("Load() succeeded, want validation errors")
	}
	list, ok := err.(*policyerrors.List)
	if !ok {
		t.Fatalf("error = %T, want *errors.List", err)
	}
	if len(list.Errors) < 2 {
		t.Errorf("len(Errors) = %d, want both problems reported", len(list.Errors))
	}
}

func TestLoad_DuplicateCheckIDs(t *testing.T) {
	dup := strings.Replace(validPolicy, "id: forecast-over-cap", "id: dup", 1)
	dup = strings.Replace(dup, "exemptions:", `  - id: dup
    severity: low
    evaluate:
      inputs:
        cost_window: month_to_date
      logic: |
        breach = false
exemptions:`, 1)

	_, err := Load([]byte(dup))
	if err == nil {
		t.Fatal("Load() succeeded, want duplicate id error")
	}
	if !strings.Contains(err.Error(), "duplicate check id") {
		t.Errorf("error %q does not mention the duplicate id", err)
	}
}

func TestLoad_ReferenceErrors(t *testing.T) {
	tests := []struct {
		name    string
		mangle  func(string) string
		wantMsg string
	}{
		{
			"unresolvable name",
			func(s string) string { return strings.Replace(s, "> cap_usd", "> unknown_cap", 1) },
			"unknown_cap",
		},
		{
			"breach never assigned",
			func(s string) string {
				return strings.Replace(s, "breach = days_observed >= min_days and forecast_eom > cap_usd",
					"verdict = forecast_eom > cap_usd", 1)
			},
			`"breach"`,
		},
		{
			"evidence path without binding",
			func(s string) string { return strings.Replace(s, "- forecast_eom\nexemptions:", "- nonexistent\nexemptions:", 1) },
			"evidence path",
		},
		{
			"metric not assigned",
			func(s string) string { return strings.Replace(s, "metrics:\n    - forecast_eom", "metrics:\n    - unknown_metric", 1) },
			"unknown_metric",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.mangle(validPolicy)))
			if err == nil {
				t.Fatal("Load() succeeded, want reference error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_LogicParseError(t *testing.T) {
	mangled := strings.Replace(validPolicy, "mtd_spend = sum(daily_costs)", "mtd_spend = sum(", 1)
	_, err := Load([]byte(mangled))
	if err == nil {
		t.Fatal("Load() succeeded, want logic parse error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load([]byte("id: [unclosed"))
	if err == nil {
		t.Fatal("Load() succeeded, want YAML error")
	}
}
