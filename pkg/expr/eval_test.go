package expr

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// evalProgram parses and evaluates src against vars, failing the test on
// any error.
func evalProgram(t *testing.T, src string, vars map[string]interface{}) *Result {
	t.Helper()
	program, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	result, err := program.Eval(NewEnv(vars))
	if err != nil {
		t.Fatalf("Eval() failed: %v", err)
	}
	return result
}

func TestEval_SpendForecast(t *testing.T) {
	src := `
mtd_spend = sum(daily_costs)
avg_daily = mtd_spend / days_observed if days_observed > 0 else 0
forecast_eom = mtd_spend + avg_daily * remaining_days_in_month
enough_data = days_observed >= min_days_observed_for_forecast
breach = enough_data and forecast_eom > soft_cap_usd
`
	result := evalProgram(t, src, map[string]interface{}{
		"daily_costs":                    []interface{}{50.0, 60.0, 55.0},
		"days_observed":                  3.0,
		"remaining_days_in_month":        27.0,
		"min_days_observed_for_forecast": 3.0,
		"soft_cap_usd":                   400.0,
	})

	if !result.Breach {
		t.Error("Breach = false, want true")
	}
	if got := result.Bindings["mtd_spend"]; got != 165.0 {
		t.Errorf("mtd_spend = %v, want 165", got)
	}
	if got := result.Bindings["avg_daily"]; got != 55.0 {
		t.Errorf("avg_daily = %v, want 55", got)
	}
	if got := result.Bindings["forecast_eom"]; got != 1650.0 {
		t.Errorf("forecast_eom = %v, want 1650", got)
	}
}

func TestEval_ForecastGuardSuppressesEarlyBreach(t *testing.T) {
	src := `
mtd_spend = sum(daily_costs)
avg_daily = mtd_spend / days_observed if days_observed > 0 else 0
forecast_eom = mtd_spend + avg_daily * remaining_days_in_month
breach = days_observed >= min_days and forecast_eom > cap
`
	result := evalProgram(t, src, map[string]interface{}{
		"daily_costs":             []interface{}{500.0},
		"days_observed":           1.0,
		"remaining_days_in_month": 30.0,
		"min_days":                3.0,
		"cap":                     400.0,
	})

	if result.Breach {
		t.Error("Breach = true, want false with insufficient observed days")
	}
	// Metrics still computed despite the guard.
	if got := result.Bindings["forecast_eom"]; got != 15500.0 {
		t.Errorf("forecast_eom = %v, want 15500", got)
	}
}

func TestEval_Comprehension(t *testing.T) {
	resources := []interface{}{
		map[string]interface{}{"display_name": "a", "license_model": "BRING_YOUR_OWN_LICENSE"},
		map[string]interface{}{"display_name": "b", "license_model": "LICENSE_INCLUDED"},
		map[string]interface{}{"display_name": "c", "license_model": "LICENSE_INCLUDED"},
	}
	src := `
offending = [db for db in resources if db.license_model != required]
offending_names = [db.display_name for db in offending]
breach = count(offending) > 0
`
	result := evalProgram(t, src, map[string]interface{}{
		"resources": resources,
		"required":  "BRING_YOUR_OWN_LICENSE",
	})

	if !result.Breach {
		t.Error("Breach = false, want true")
	}
	names, ok := result.Bindings["offending_names"].([]interface{})
	if !ok {
		t.Fatalf("offending_names is %T, want list", result.Bindings["offending_names"])
	}
	if len(names) != 2 || names[0] != "b" || names[1] != "c" {
		t.Errorf("offending_names = %v, want [b c]", names)
	}
}

func TestEval_AnyTagFiltering(t *testing.T) {
	resources := []interface{}{
		map[string]interface{}{"display_name": "db1", "tags": map[string]string{"HighAvailability": "true"}},
		map[string]interface{}{"display_name": "db2", "tags": map[string]string{}},
		map[string]interface{}{"display_name": "db3", "tags": map[string]string{"env": "dr", "DR": "yes"}},
	}
	src := `
total_count = count(resources)
exempted = [db for db in resources if any_tag(exempt_tags, db.tags)]
effective_count = total_count - count(exempted)
breach = effective_count > limit
`
	result := evalProgram(t, src, map[string]interface{}{
		"resources":   resources,
		"exempt_tags": []interface{}{"HighAvailability", "Clustered", "DR"},
		"limit":       0.0,
	})

	if got := result.Bindings["effective_count"]; got != 1.0 {
		t.Errorf("effective_count = %v, want 1", got)
	}
	if !result.Breach {
		t.Error("Breach = false, want true")
	}
}

func TestEval_InOperator(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"member", `breach = "b" in items`, true},
		{"not member", `breach = "z" in items`, false},
		{"negated", `breach = "z" not in items`, true},
		{"substring", `breach = "bc" in "abcd"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evalProgram(t, tt.src, map[string]interface{}{
				"items": []interface{}{"a", "b", "c"},
			})
			if result.Breach != tt.want {
				t.Errorf("Breach = %v, want %v", result.Breach, tt.want)
			}
		})
	}
}

func TestEval_ShortCircuit(t *testing.T) {
	// The right operand would divide by zero; short-circuiting must skip it.
	src := `breach = false and 1 / zero > 0`
	result := evalProgram(t, src, map[string]interface{}{"zero": 0.0})
	if result.Breach {
		t.Error("Breach = true, want false")
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	program, err := Parse(`breach = 1 / zero > 0`)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	_, err = program.Eval(NewEnv(map[string]interface{}{"zero": 0.0}))
	if err == nil {
		t.Fatal("Eval() succeeded, want division by zero error")
	}
	var divErr *DivisionByZeroError
	if !errors.As(err, &divErr) {
		t.Errorf("error = %v, want DivisionByZeroError", err)
	}
}

func TestEval_UnboundName(t *testing.T) {
	program, err := Parse(`breach = missing > 0`)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	_, err = program.Eval(NewEnv(nil))
	if err == nil {
		t.Fatal("Eval() succeeded, want unbound name error")
	}
	var unbound *UnboundNameError
	if !errors.As(err, &unbound) {
		t.Errorf("error = %v, want UnboundNameError", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q does not name the unbound identifier", err)
	}
}

func TestEval_NoImplicitTruthiness(t *testing.T) {
	program, err := Parse(`breach = count(items) and true`)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	_, err = program.Eval(NewEnv(map[string]interface{}{"items": []interface{}{1.0}}))
	if err == nil {
		t.Fatal("Eval() succeeded, want type error for non-boolean operand")
	}
	var typeErr *TypeError
	if !errors.As(err, &typeErr) {
		t.Errorf("error = %v, want TypeError", err)
	}
}

func TestEval_BreachMustBeBool(t *testing.T) {
	program, err := Parse(`breach = 42`)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if _, err := program.Eval(NewEnv(nil)); err == nil {
		t.Fatal("Eval() succeeded, want type error for non-boolean breach")
	}
}

func TestEval_MissingAttributeIsNull(t *testing.T) {
	src := `breach = record.optional == null`
	result := evalProgram(t, src, map[string]interface{}{
		"record": map[string]interface{}{"present": 1.0},
	})
	if !result.Breach {
		t.Error("Breach = false, want true for missing attribute == null")
	}
}

func TestEval_AttributeOnNullFails(t *testing.T) {
	program, err := Parse(`breach = nothing.field == null`)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if _, err := program.Eval(NewEnv(map[string]interface{}{"nothing": nil})); err == nil {
		t.Fatal("Eval() succeeded, want type error for attribute access on null")
	}
}

func TestEval_TimeComparison(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	result := evalProgram(t, `breach = today > month_start`, map[string]interface{}{
		"today":       today,
		"month_start": start,
	})
	if !result.Breach {
		t.Error("Breach = false, want true for later date")
	}
}

func TestEval_Deterministic(t *testing.T) {
	vars := map[string]interface{}{
		"daily_costs": []interface{}{0.1, 0.2, 0.3, 12.5, 99.9},
	}
	first := evalProgram(t, `total = sum(daily_costs)
breach = total > 100`, vars)
	for i := 0; i < 10; i++ {
		again := evalProgram(t, `total = sum(daily_costs)
breach = total > 100`, vars)
		if again.Bindings["total"] != first.Bindings["total"] {
			t.Fatalf("run %d: total = %v, want %v", i, again.Bindings["total"], first.Bindings["total"])
		}
	}
}

func TestEval_BindingOrder(t *testing.T) {
	result := evalProgram(t, `a = 1
b = 2
a = 3
breach = false`, nil)

	want := []string{"a", "b", "breach"}
	if len(result.Order) != len(want) {
		t.Fatalf("Order = %v, want %v", result.Order, want)
	}
	for i, name := range want {
		if result.Order[i] != name {
			t.Errorf("Order[%d] = %q, want %q", i, result.Order[i], name)
		}
	}
	if result.Bindings["a"] != 3.0 {
		t.Errorf("a = %v, want 3 after reassignment", result.Bindings["a"])
	}
}

func TestEval_StringConcatenation(t *testing.T) {
	result := evalProgram(t, `label = "db-" + suffix
breach = label == "db-prod"`, map[string]interface{}{"suffix": "prod"})
	if !result.Breach {
		t.Errorf("label = %v, want db-prod", result.Bindings["label"])
	}
}
