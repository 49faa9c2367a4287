package engine

import (
	"path"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/provider"
)

// ResolveScopes applies a policy's selector to the available scope
// instances. Include patterns are evaluated first ("*" matches all); any
// scope additionally matching an exclude pattern is removed: exclude
// always wins over include. Patterns match against scope names.
//
// An empty result is a valid outcome: the policy simply produces zero
// findings for this pass.
func ResolveScopes(selector ast.Scope, scopes []provider.Scope) []provider.Scope {
	var resolved []provider.Scope
	for _, scope := range scopes {
		if matchesAny(selector.Include, scope.Name) && !matchesAny(selector.Exclude, scope.Name) {
			resolved = append(resolved, scope)
		}
	}
	return resolved
}

// matchesAny reports whether name matches any of the glob patterns.
// Patterns were validated at policy load time, so a match error here means
// a validator gap; treat it as no match.
func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if pattern == "*" {
			return true
		}
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
