package engine

import (
	"strings"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/expr"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/provider"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/temporal"
)

// pairData is the batched snapshot fetched once per (policy, scope) pair,
// covering the declared inputs of every check.
type pairData struct {
	resources map[string][]provider.Resource // keyed by resource type
	costs     []provider.CostPoint           // MTD daily series, date order
	hasCosts  bool
}

// buildEnv assembles the immutable evaluation environment for one check:
// policy parameters, the check's bound input data and the temporal values.
// The returned environment is never mutated after construction, so checks
// and pairs share nothing writable.
func buildEnv(doc *ast.PolicyDocument, check *ast.Check, data *pairData, bounds *temporal.Bounds) *expr.Env {
	vars := make(map[string]interface{})

	for name, value := range doc.Parameters {
		vars[name] = normalizeValue(value)
	}

	daysObserved := bounds.DaysObserved
	if check.Evaluate.Inputs.ResourceType != "" {
		list := data.resources[check.Evaluate.Inputs.ResourceType]
		resources := make([]interface{}, 0, len(list))
		for i := range list {
			resources = append(resources, resourceValue(&list[i]))
		}
		vars[ast.BindingResources] = resources
	}
	if check.Evaluate.Inputs.CostWindow != "" {
		daily := make([]interface{}, 0, len(data.costs))
		for _, point := range data.costs {
			daily = append(daily, point.AmountUSD)
		}
		vars[ast.BindingDailyCosts] = daily
		// Observed days follow the snapshot, not the calendar: a forecast
		// is only as meaningful as the days of cost data behind it.
		daysObserved = len(data.costs)
	}

	vars["today"] = bounds.Today
	vars["month_start"] = bounds.Start
	vars["month_end"] = bounds.End
	vars["days_observed"] = float64(daysObserved)
	vars["remaining_days_in_month"] = float64(bounds.RemainingDays)
	vars["is_month_end"] = bounds.IsMonthEnd

	return expr.NewEnv(vars)
}

// resourceValue converts a provider resource into the record shape logic
// programs see: attributes at the top level next to display_name, id and
// tags.
func resourceValue(r *provider.Resource) map[string]interface{} {
	record := make(map[string]interface{}, len(r.Attributes)+3)
	for key, value := range r.Attributes {
		record[key] = normalizeValue(value)
	}
	record["display_name"] = r.DisplayName
	record["id"] = r.ID
	record["tags"] = r.Tags
	return record
}

// normalizeValue coerces YAML-decoded values into the evaluator's runtime
// types: all numbers become float64, nested maps and lists are normalized
// recursively.
func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, elem := range value {
			out[i] = normalizeValue(elem)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for key, elem := range value {
			out[key] = normalizeValue(elem)
		}
		return out
	}
	return v
}

// lookupPath resolves a dotted evidence path against the evaluator
// bindings. Missing segments resolve to (nil, false): the evidence entry is
// emitted as null, never a fatal error.
func lookupPath(bindings map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{}
	var ok bool
	if current, ok = bindings[segments[0]]; !ok {
		return nil, false
	}
	for _, segment := range segments[1:] {
		switch node := current.(type) {
		case map[string]interface{}:
			if current, ok = node[segment]; !ok {
				return nil, false
			}
		case map[string]string:
			s, found := node[segment]
			if !found {
				return nil, false
			}
			current = s
		default:
			return nil, false
		}
	}
	return current, true
}
