package exemption

import (
	"testing"
	"time"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
)

var evalDate = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

func TestIsExempt_TagPresence(t *testing.T) {
	resolver := NewResolver(nil)
	rules := []ast.ExemptionRule{
		{Match: ast.MatchAny, Tags: []string{"HighAvailability", "DR"}},
	}

	tests := []struct {
		name string
		tags map[string]string
		want bool
	}{
		{"matching key, any value", map[string]string{"HighAvailability": "false"}, true},
		{"second entry matches", map[string]string{"DR": "yes"}, true},
		{"no matching key", map[string]string{"env": "prod"}, false},
		{"nil tags", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.IsExempt(tt.tags, rules, evalDate); got != tt.want {
				t.Errorf("IsExempt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsExempt_KeyValueEntries(t *testing.T) {
	resolver := NewResolver(nil)
	rules := []ast.ExemptionRule{
		{Match: ast.MatchAny, Tags: []string{"env=prod", "Clustered"}},
	}

	if !resolver.IsExempt(map[string]string{"env": "prod"}, rules, evalDate) {
		t.Error("exact value match should exempt")
	}
	if resolver.IsExempt(map[string]string{"env": "dev"}, rules, evalDate) {
		t.Error("value mismatch should not exempt")
	}
	if !resolver.IsExempt(map[string]string{"Clustered": "anything"}, rules, evalDate) {
		t.Error("bare key entry should match on presence")
	}
}

func TestIsExempt_MatchAll(t *testing.T) {
	resolver := NewResolver(nil)
	rules := []ast.ExemptionRule{
		{Match: ast.MatchAll, Tags: []string{"env=prod", "CostApproved"}},
	}

	both := map[string]string{"env": "prod", "CostApproved": "FIN-1"}
	if !resolver.IsExempt(both, rules, evalDate) {
		t.Error("all entries matching should exempt")
	}
	one := map[string]string{"env": "prod"}
	if resolver.IsExempt(one, rules, evalDate) {
		t.Error("partial match should not exempt under match: all")
	}
}

func TestIsExempt_Expiry(t *testing.T) {
	resolver := NewResolver(nil)
	tags := map[string]string{"CostApproved": "FIN-9"}

	tests := []struct {
		name      string
		expiresAt string
		want      bool
	}{
		{"future expiry", "2026-12-31", true},
		{"expiry today is already lapsed", "2026-08-15", false},
		{"past expiry", "2026-01-01", false},
		{"malformed expiry never exempts", "soon", false},
		{"no expiry", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := []ast.ExemptionRule{
				{Match: ast.MatchAny, Tags: []string{"CostApproved"}, ExpiresAt: tt.expiresAt},
			}
			if got := resolver.IsExempt(tags, rules, evalDate); got != tt.want {
				t.Errorf("IsExempt(expires %q) = %v, want %v", tt.expiresAt, got, tt.want)
			}
		})
	}
}

func TestIsExempt_ExpiryInPolicyTimezone(t *testing.T) {
	resolver := NewResolver(nil)
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatal(err)
	}
	tags := map[string]string{"CostApproved": "FIN-2214"}
	rules := []ast.ExemptionRule{
		{Match: ast.MatchAny, Tags: []string{"CostApproved"}, ExpiresAt: "2026-12-31"},
	}

	// Local midnight east of UTC precedes UTC midnight of the same date;
	// the calendar comparison must still see the rule as lapsed.
	onExpiry := time.Date(2026, 12, 31, 0, 0, 0, 0, rome)
	if resolver.IsExempt(tags, rules, onExpiry) {
		t.Error("rule expiring 2026-12-31 still exempts on 2026-12-31 in Europe/Rome")
	}

	dayBefore := time.Date(2026, 12, 30, 0, 0, 0, 0, rome)
	if !resolver.IsExempt(tags, rules, dayBefore) {
		t.Error("rule expiring 2026-12-31 should exempt on 2026-12-30 in Europe/Rome")
	}
}

func TestIsExempt_FirstMatchWins(t *testing.T) {
	resolver := NewResolver(nil)
	// The first rule is expired; the second still matches.
	rules := []ast.ExemptionRule{
		{Match: ast.MatchAny, Tags: []string{"CostApproved"}, ExpiresAt: "2026-01-01"},
		{Match: ast.MatchAny, Tags: []string{"CostApproved"}, ExpiresAt: "2027-01-01"},
	}
	if !resolver.IsExempt(map[string]string{"CostApproved": "x"}, rules, evalDate) {
		t.Error("later valid rule should still exempt after an expired one")
	}
}

func TestIsExempt_EmptyRuleNeverMatches(t *testing.T) {
	resolver := NewResolver(nil)
	rules := []ast.ExemptionRule{{Match: ast.MatchAll}}
	if resolver.IsExempt(map[string]string{"any": "tag"}, rules, evalDate) {
		t.Error("rule without tag entries must not exempt")
	}
}
