package sandbox

import "mercator-hq/themis/pkg/rules"

// Classification identifies why a rule failed validation.
// The sandbox reports exactly one classification per failure.
type Classification string

const (
	// ClassSyntaxError means the rule source did not compile.
	ClassSyntaxError Classification = "syntax_error"

	// ClassRuntimeError means the rule raised while running fixtures.
	ClassRuntimeError Classification = "runtime_error"

	// ClassTestFailure means the rule ran but returned wrong results
	// for the fixtures.
	ClassTestFailure Classification = "test_failure"

	// ClassSecurityIssue means the rule attempted a disallowed operation
	// such as filesystem, process, or OS-level access.
	ClassSecurityIssue Classification = "security_issue"
)

// Outcome is the classified result of validating a rule against fixtures.
type Outcome struct {
	// Passed indicates the rule survived all fixtures.
	Passed bool `json:"passed"`

	// Classification is set on failure to exactly one failure class.
	Classification Classification `json:"classification,omitempty"`

	// Message is the human-readable failure message.
	Message string `json:"message,omitempty"`

	// TestOutput is the raw captured output from the sandbox run.
	TestOutput string `json:"test_output,omitempty"`
}

// FailureText renders the outcome's classification and message as the
// single error string recorded in a rule's validation history.
func (o *Outcome) FailureText() string {
	if o.Passed {
		return ""
	}
	if o.Classification == "" {
		return o.Message
	}
	return string(o.Classification) + ": " + o.Message
}

// Verdict is the result of evaluating a rule against a live trade request.
type Verdict struct {
	// Allowed is the rule's decision for this trade.
	Allowed bool `json:"allowed"`

	// Reason explains a denial.
	Reason string `json:"reason,omitempty"`

	// PolicyRef cites the policy section behind the decision.
	PolicyRef string `json:"policy_ref,omitempty"`
}

// validateRequest is the wire request for fixture validation.
type validateRequest struct {
	RuleSource string `json:"rule_source"`
}

// executeRequest is the wire request for live evaluation.
type executeRequest struct {
	RuleSource string                `json:"rule_source"`
	Employee   rules.Employee        `json:"employee"`
	Security   rules.SecurityContext `json:"security"`
	TradeDate  string                `json:"trade_date"`
}

// errorResponse is the wire shape of a sandbox-side error.
type errorResponse struct {
	Error string `json:"error"`
}
