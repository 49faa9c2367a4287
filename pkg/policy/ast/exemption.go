package ast

// MatchMode is the combination semantics of a rule's tag entries.
type MatchMode string

const (
	// MatchAny exempts when any tag entry matches (the default).
	MatchAny MatchMode = "any"

	// MatchAll exempts only when every tag entry matches.
	MatchAll MatchMode = "all"
)

// Exemptions holds a policy's global override rules plus the advisory
// approval process description.
type Exemptions struct {
	// TagsAny is shorthand for a single match-any rule without approval
	// metadata; the loader normalizes it into Rules.
	TagsAny []string `yaml:"tags_any"`

	// Rules are evaluated in order; the first match exempts.
	Rules []ExemptionRule `yaml:"rules"`

	// Approval describes the human approval process. Advisory only: the
	// engine never interprets it.
	Approval string `yaml:"approval"`
}

// ExemptionRule is one tag-predicate override. Tag entries are either bare
// keys ("HighAvailability", key presence) or "key=value" pairs (exact value
// match); the two forms are combinable within one rule.
type ExemptionRule struct {
	// Match selects any/all semantics over Tags. Defaults to any.
	Match MatchMode `yaml:"match"`

	// Tags are the entries the predicate tests against resource tags.
	Tags []string `yaml:"tags"`

	// Ticket is the approval reference (e.g. a change ticket id).
	Ticket string `yaml:"ticket"`

	// ExpiresAt bounds the exemption in time, "YYYY-MM-DD". The rule only
	// exempts while the evaluation date is before this date; expired or
	// malformed values never exempt.
	ExpiresAt string `yaml:"expires_at"`
}

// AllRules returns the normalized rule list: the TagsAny shorthand (if any)
// followed by the explicit rules.
func (e *Exemptions) AllRules() []ExemptionRule {
	if len(e.TagsAny) == 0 {
		return e.Rules
	}
	rules := make([]ExemptionRule, 0, len(e.Rules)+1)
	rules = append(rules, ExemptionRule{Match: MatchAny, Tags: e.TagsAny})
	rules = append(rules, e.Rules...)
	return rules
}

// Empty reports whether the policy declares no exemption rules at all.
func (e *Exemptions) Empty() bool {
	return len(e.TagsAny) == 0 && len(e.Rules) == 0
}
