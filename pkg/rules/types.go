package rules

import "time"

// ValidationAttempt records the outcome of one sandbox validation run for a
// rule. Attempts are append-only: once recorded they are never modified or
// truncated, so the history is a faithful audit trail of how the rule
// converged (or failed to).
type ValidationAttempt struct {
	// AttemptNumber is the 1-based validation attempt this record describes.
	AttemptNumber int `json:"attempt_number"`

	// Passed indicates whether the rule passed the sandbox fixtures.
	Passed bool `json:"passed"`

	// Error is the validator's failure message, empty on a pass.
	Error string `json:"error,omitempty"`

	// TestOutput is the raw captured output from the sandbox run.
	TestOutput string `json:"test_output,omitempty"`

	// FeedbackToLLM is the feedback handed to the generation service when
	// the rule was regenerated after this attempt.
	FeedbackToLLM string `json:"feedback_to_llm,omitempty"`

	// Timestamp is when the attempt completed.
	Timestamp time.Time `json:"timestamp"`
}

// Rule is one executable compliance rule generated from policy text.
type Rule struct {
	// RuleID uniquely identifies the rule within its firm's rule set.
	RuleID string `json:"rule_id"`

	// RuleName is the human-readable rule name.
	RuleName string `json:"rule_name"`

	// Description explains what the rule enforces.
	Description string `json:"description"`

	// PolicyReference cites the policy section this rule implements.
	PolicyReference string `json:"policy_reference"`

	// SourceCode is the generated rule body executed by the sandbox.
	// The function signature is rule(employee, security, trade_date) and
	// it returns {allowed: bool, reason?: string, policy_ref?: string}.
	SourceCode string `json:"rule_source"`

	// AppliesToRoles restricts the rule to specific employee roles.
	// An empty slice means the rule applies to every role.
	AppliesToRoles []string `json:"applies_to_roles"`

	// Active indicates the rule passed validation and participates in
	// compliance checks. Rules that exhausted their retry budget are
	// retained with Active=false for auditability.
	Active bool `json:"active"`

	// GenerationAttempt counts the generation calls that produced the
	// rule's current source. It starts at 1 and increments on each
	// regeneration.
	GenerationAttempt int `json:"generation_attempt"`

	// ValidationHistory is the ordered, append-only sequence of
	// validation attempts for this rule.
	ValidationHistory []ValidationAttempt `json:"validation_history"`
}

// AppliesTo reports whether the rule applies to the given employee role.
// A rule with no role restrictions applies to everyone.
func (r *Rule) AppliesTo(role string) bool {
	if len(r.AppliesToRoles) == 0 {
		return true
	}
	for _, allowed := range r.AppliesToRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// LastValidation returns the most recent validation attempt, or nil if the
// rule has never been validated.
func (r *Rule) LastValidation() *ValidationAttempt {
	if len(r.ValidationHistory) == 0 {
		return nil
	}
	return &r.ValidationHistory[len(r.ValidationHistory)-1]
}

// RuleSet is the durable, versioned collection of rules for one firm.
// A new policy ingestion fully replaces the firm's prior rule set; there is
// no merge.
type RuleSet struct {
	// FirmName is the firm the rules belong to, as supplied by the caller.
	FirmName string `json:"firm_name"`

	// PolicyVersion is the year-month of generation (YYYY-MM).
	PolicyVersion string `json:"policy_version"`

	// LastUpdated is when the rule set was last persisted.
	LastUpdated time.Time `json:"last_updated"`

	// GeneratedByLLM marks the document as machine-generated.
	GeneratedByLLM bool `json:"generated_by_llm"`

	// TotalIterations is the sum of GenerationAttempt across all rules,
	// i.e. the total generation round-trips consumed by the ingestion.
	TotalIterations int `json:"total_iterations"`

	// Rules is the ordered sequence of rules. Order follows the original
	// candidate order from generation, not validation completion order.
	Rules []Rule `json:"rules"`
}

// ActiveRules returns the rules that participate in compliance checks.
func (rs *RuleSet) ActiveRules() []Rule {
	active := make([]Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.Active {
			active = append(active, r)
		}
	}
	return active
}

// PreviousAttempt carries a failed rule's code and validator feedback into a
// regeneration call. It exists only for the duration of one retry.
type PreviousAttempt struct {
	// Code is the rule source that failed validation.
	Code string

	// Error is the validator's classification and message.
	Error string

	// TestResults is the raw test output captured by the sandbox.
	TestResults string
}

// GenerationContext is the input to a generation or regeneration call.
type GenerationContext struct {
	// FirmName scopes the generated rules to a firm.
	FirmName string

	// PolicyText is the raw compliance policy to convert into rules.
	PolicyText string

	// PreviousAttempt is required for regeneration and must be nil for
	// initial generation.
	PreviousAttempt *PreviousAttempt
}

// Employee describes the person requesting a trade. It is supplied per
// compliance query and never persisted by Themis.
type Employee struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Division string `json:"division"`
	Firm     string `json:"firm"`

	// CoveredTickers lists securities the employee covers (research).
	CoveredTickers []string `json:"covered_tickers,omitempty"`

	// RestrictedTickers lists securities the employee personally may not
	// trade.
	RestrictedTickers []string `json:"restricted_tickers,omitempty"`

	// FirmRestrictions is the firm-wide restricted list in effect for
	// this query.
	FirmRestrictions []string `json:"firm_restrictions,omitempty"`

	// QuickReference carries free-form facts the rules may consult.
	QuickReference map[string]string `json:"quick_reference,omitempty"`
}

// SecurityContext describes the security side of a trade request.
type SecurityContext struct {
	Ticker          string `json:"ticker"`
	RequestedAction string `json:"requested_action,omitempty"`

	// EarningsDate is the security's next earnings date (YYYY-MM-DD),
	// if known.
	EarningsDate string `json:"earnings_date,omitempty"`

	// MarketCap is the security's market capitalization in dollars.
	MarketCap float64 `json:"market_cap,omitempty"`

	// ParsedQuery carries metadata from natural-language query parsing.
	ParsedQuery map[string]string `json:"parsed_query,omitempty"`
}

// ComplianceResult is the aggregated verdict for one trade request.
// It is produced fresh per query and owned by the caller.
type ComplianceResult struct {
	// Allowed is the logical AND of every evaluated rule's verdict.
	Allowed bool `json:"allowed"`

	// Reasons lists denial reasons, in evaluation order, from rules that
	// denied the trade.
	Reasons []string `json:"reasons"`

	// PolicyRefs lists policy references from denying rules, in
	// evaluation order.
	PolicyRefs []string `json:"policy_refs"`

	// RulesChecked lists the IDs of every rule actually evaluated.
	RulesChecked []string `json:"rules_checked"`
}

// NewComplianceResult returns a result that allows the trade and carries
// empty (non-nil) slices, the shape returned when a firm has no rules.
func NewComplianceResult() *ComplianceResult {
	return &ComplianceResult{
		Allowed:      true,
		Reasons:      []string{},
		PolicyRefs:   []string{},
		RulesChecked: []string{},
	}
}
