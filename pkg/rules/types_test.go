package rules

import (
	"testing"
	"time"
)

func TestRule_AppliesTo(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		role  string
		want  bool
	}{
		{
			name:  "empty roles applies to everyone",
			roles: []string{},
			role:  "trader",
			want:  true,
		},
		{
			name:  "nil roles applies to everyone",
			roles: nil,
			role:  "analyst",
			want:  true,
		},
		{
			name:  "matching role",
			roles: []string{"trader", "analyst"},
			role:  "analyst",
			want:  true,
		},
		{
			name:  "non-matching role",
			roles: []string{"trader"},
			role:  "analyst",
			want:  false,
		},
		{
			name:  "role match is case-sensitive",
			roles: []string{"Trader"},
			role:  "trader",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &Rule{RuleID: "r1", AppliesToRoles: tt.roles}
			if got := rule.AppliesTo(tt.role); got != tt.want {
				t.Errorf("AppliesTo(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestRule_LastValidation(t *testing.T) {
	rule := &Rule{RuleID: "r1"}
	if got := rule.LastValidation(); got != nil {
		t.Errorf("LastValidation() on unvalidated rule = %+v, want nil", got)
	}

	first := ValidationAttempt{AttemptNumber: 1, Passed: false, Error: "syntax_error: bad indent"}
	second := ValidationAttempt{AttemptNumber: 2, Passed: true, Timestamp: time.Now()}
	rule.ValidationHistory = append(rule.ValidationHistory, first, second)

	got := rule.LastValidation()
	if got == nil {
		t.Fatal("LastValidation() = nil after attempts recorded")
	}
	if got.AttemptNumber != 2 || !got.Passed {
		t.Errorf("LastValidation() = %+v, want attempt 2, passed", got)
	}
}

func TestRuleSet_ActiveRules(t *testing.T) {
	rs := &RuleSet{
		Rules: []Rule{
			{RuleID: "r1", Active: true},
			{RuleID: "r2", Active: false},
			{RuleID: "r3", Active: true},
		},
	}

	active := rs.ActiveRules()
	if len(active) != 2 {
		t.Fatalf("ActiveRules() returned %d rules, want 2", len(active))
	}
	if active[0].RuleID != "r1" || active[1].RuleID != "r3" {
		t.Errorf("ActiveRules() order = [%s, %s], want [r1, r3]", active[0].RuleID, active[1].RuleID)
	}
}

func TestNewComplianceResult(t *testing.T) {
	result := NewComplianceResult()

	if !result.Allowed {
		t.Error("NewComplianceResult().Allowed = false, want true")
	}
	if result.Reasons == nil || len(result.Reasons) != 0 {
		t.Errorf("Reasons = %v, want empty non-nil slice", result.Reasons)
	}
	if result.PolicyRefs == nil || len(result.PolicyRefs) != 0 {
		t.Errorf("PolicyRefs = %v, want empty non-nil slice", result.PolicyRefs)
	}
	if result.RulesChecked == nil || len(result.RulesChecked) != 0 {
		t.Errorf("RulesChecked = %v, want empty non-nil slice", result.RulesChecked)
	}
}
