package expr

import (
	"fmt"
	"strings"
	"time"
)

// Runtime values are plain Go values: nil, bool, float64 (all numbers),
// string, time.Time (dates), []interface{} (lists) and
// map[string]interface{} (records such as resources). YAML-decoded ints are
// coerced to float64 at the boundary.

// typeName returns a human-readable name for a runtime value's type,
// used in TypeError messages.
func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case time.Time:
		return "date"
	case []interface{}:
		return "list"
	case map[string]interface{}:
		return "record"
	case map[string]string:
		return "tags"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// asNumber coerces a value to float64. Integer values are accepted because
// YAML and JSON decoding produce them for whole numbers.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// asList coerces a value to a list.
func asList(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}

// truth reports the boolean value of v. Only booleans carry truth: the
// language deliberately has no implicit truthiness for numbers or lists, so
// a predicate must be an explicit comparison.
func truth(v interface{}, context string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Op: context, Message: fmt.Sprintf("expected bool, got %s", typeName(v))}
	}
	return b, nil
}

// valuesEqual implements == over runtime values.
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	}
	return false
}

// compareValues implements ordered comparison over numbers, strings and
// dates. Returns -1, 0 or 1.
func compareValues(op string, a, b interface{}) (int, error) {
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		if !ok {
			return 0, &TypeError{Op: op, Message: fmt.Sprintf("cannot compare number with %s", typeName(b))}
		}
		switch {
		case an < bn:
			return -1, nil
		case an > bn:
			return 1, nil
		}
		return 0, nil
	}

	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, &TypeError{Op: op, Message: fmt.Sprintf("cannot compare string with %s", typeName(b))}
		}
		return strings.Compare(as, bs), nil
	}

	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, &TypeError{Op: op, Message: fmt.Sprintf("cannot compare date with %s", typeName(b))}
		}
		switch {
		case at.Before(bt):
			return -1, nil
		case at.After(bt):
			return 1, nil
		}
		return 0, nil
	}

	return 0, &TypeError{Op: op, Message: fmt.Sprintf("%s values are not ordered", typeName(a))}
}

// memberOf implements the "in" operator: element membership in a list, or
// substring/key membership for strings and tag maps.
func memberOf(elem, collection interface{}) (bool, error) {
	switch c := collection.(type) {
	case []interface{}:
		for _, v := range c {
			if valuesEqual(elem, v) {
				return true, nil
			}
		}
		return false, nil
	case string:
		s, ok := elem.(string)
		if !ok {
			return false, &TypeError{Op: "in", Message: fmt.Sprintf("cannot search for %s in a string", typeName(elem))}
		}
		return strings.Contains(c, s), nil
	case map[string]string:
		s, ok := elem.(string)
		if !ok {
			return false, &TypeError{Op: "in", Message: fmt.Sprintf("cannot search for %s in tags", typeName(elem))}
		}
		_, present := c[s]
		return present, nil
	case map[string]interface{}:
		s, ok := elem.(string)
		if !ok {
			return false, &TypeError{Op: "in", Message: fmt.Sprintf("cannot search for %s in a record", typeName(elem))}
		}
		_, present := c[s]
		return present, nil
	}
	return false, &TypeError{Op: "in", Message: fmt.Sprintf("right operand must be a collection, got %s", typeName(collection))}
}
