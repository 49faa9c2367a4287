package expr

import (
	"fmt"
	"sort"
	"strings"
)

// builtinFunc implements one builtin. Builtins are pure: they cannot touch
// the environment or perform I/O.
type builtinFunc func(args []interface{}) (interface{}, error)

// builtins is the closed set of callable functions.
var builtins = map[string]builtinFunc{
	"count":   builtinLen,
	"len":     builtinLen,
	"sum":     builtinSum,
	"any_tag": builtinAnyTag,
}

// IsBuiltin reports whether name is a callable builtin.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinNames returns the builtin names, sorted, as a comma-separated
// string for diagnostics.
func BuiltinNames() string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// builtinLen implements count(xs) and len(xs).
func builtinLen(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "count", Message: fmt.Sprintf("expected 1 argument, got %d", len(args))}
	}
	switch v := args[0].(type) {
	case []interface{}:
		return float64(len(v)), nil
	case string:
		return float64(len(v)), nil
	case map[string]string:
		return float64(len(v)), nil
	}
	return nil, &TypeError{Op: "count", Message: fmt.Sprintf("expected a collection, got %s", typeName(args[0]))}
}

// builtinSum implements sum(xs) over numeric elements. Summation follows
// the list's declared order so results are bit-identical across runs.
func builtinSum(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, &TypeError{Op: "sum", Message: fmt.Sprintf("expected 1 argument, got %d", len(args))}
	}
	list, ok := asList(args[0])
	if !ok {
		return nil, &TypeError{Op: "sum", Message: fmt.Sprintf("expected a list, got %s", typeName(args[0]))}
	}
	total := 0.0
	for i, elem := range list {
		n, ok := asNumber(elem)
		if !ok {
			return nil, &TypeError{Op: "sum", Message: fmt.Sprintf("element %d is %s, not a number", i, typeName(elem))}
		}
		total += n
	}
	return total, nil
}

// builtinAnyTag implements any_tag(exempt_tags, resource_tags): true if any
// entry in exempt_tags is present in resource_tags. A bare "key" entry
// matches on key presence regardless of value; a "key=value" entry requires
// an exact value match. Matching is independent of tag order.
func builtinAnyTag(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, &TypeError{Op: "any_tag", Message: fmt.Sprintf("expected 2 arguments, got %d", len(args))}
	}

	entries, ok := asList(args[0])
	if !ok {
		return nil, &TypeError{Op: "any_tag", Message: fmt.Sprintf("first argument must be a list of tag entries, got %s", typeName(args[0]))}
	}

	tags, err := asTags(args[1])
	if err != nil {
		return nil, err
	}

	for i, raw := range entries {
		entry, ok := raw.(string)
		if !ok {
			return nil, &TypeError{Op: "any_tag", Message: fmt.Sprintf("tag entry %d is %s, not a string", i, typeName(raw))}
		}
		if TagEntryMatches(entry, tags) {
			return true, nil
		}
	}
	return false, nil
}

// TagEntryMatches reports whether a single exemption tag entry matches the
// given tag set. Exported for the exemption resolver, which shares the
// matching semantics with the any_tag builtin.
func TagEntryMatches(entry string, tags map[string]string) bool {
	if key, value, found := strings.Cut(entry, "="); found {
		actual, present := tags[strings.TrimSpace(key)]
		return present && actual == strings.TrimSpace(value)
	}
	_, present := tags[strings.TrimSpace(entry)]
	return present
}

// asTags coerces a runtime value to a tag map.
func asTags(v interface{}) (map[string]string, error) {
	switch t := v.(type) {
	case map[string]string:
		return t, nil
	case map[string]interface{}:
		tags := make(map[string]string, len(t))
		for k, raw := range t {
			s, ok := raw.(string)
			if !ok {
				return nil, &TypeError{Op: "any_tag", Message: fmt.Sprintf("tag %q has %s value, expected string", k, typeName(raw))}
			}
			tags[k] = s
		}
		return tags, nil
	case nil:
		return nil, nil
	}
	return nil, &TypeError{Op: "any_tag", Message: fmt.Sprintf("second argument must be a tag map, got %s", typeName(v))}
}
