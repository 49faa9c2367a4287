// Package exemption decides whether a resource is exempt from a policy,
// given the policy's declared tag-based exemption rules.
//
// A tag entry of the form "key" matches on key presence regardless of
// value; "key=value" requires an exact value match. Both forms are
// combinable within one rule. A rule with an expiry only exempts while the
// evaluation date is strictly before that expiry: expired or malformed
// expiries never silently suppress a breach.
package exemption

import (
	"log/slog"
	"time"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/expr"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
)

// Resolver evaluates exemption rules against resource tags.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates an exemption resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger.With("component", "exemption")}
}

// IsExempt reports whether a resource with the given tags matches any
// exemption rule as of asOf. Rules are evaluated in declaration order and
// the first match wins.
func (r *Resolver) IsExempt(tags map[string]string, rules []ast.ExemptionRule, asOf time.Time) bool {
	for i := range rules {
		if r.ruleMatches(&rules[i], tags, asOf) {
			return true
		}
	}
	return false
}

// ruleMatches checks one rule's tag predicate and expiry.
func (r *Resolver) ruleMatches(rule *ast.ExemptionRule, tags map[string]string, asOf time.Time) bool {
	if len(rule.Tags) == 0 {
		return false
	}

	matched := false
	switch rule.Match {
	case ast.MatchAll:
		matched = true
		for _, entry := range rule.Tags {
			if !expr.TagEntryMatches(entry, tags) {
				matched = false
				break
			}
		}
	default: // MatchAny
		for _, entry := range rule.Tags {
			if expr.TagEntryMatches(entry, tags) {
				matched = true
				break
			}
		}
	}
	if !matched {
		return false
	}

	// Expiry is checked on every evaluation so a stale exemption stops
	// suppressing breaches the day it lapses. The expiry date is parsed in
	// asOf's location: both sides are local midnights, so the comparison is
	// a calendar-date comparison in the policy's timezone.
	if rule.ExpiresAt != "" {
		expiry, err := time.ParseInLocation("2006-01-02", rule.ExpiresAt, asOf.Location())
		if err != nil {
			r.logger.Warn("exemption rule has malformed expiry, treating as non-exempting",
				"expires_at", rule.ExpiresAt,
				"ticket", rule.Ticket,
			)
			return false
		}
		if !asOf.Before(expiry) {
			r.logger.Warn("exemption rule expired, treating as non-exempting",
				"expires_at", rule.ExpiresAt,
				"ticket", rule.Ticket,
			)
			return false
		}
	}

	return true
}
