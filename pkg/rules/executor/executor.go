package executor

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/themis/pkg/rules"
	"mercator-hq/themis/pkg/rules/sandbox"
)

// RuleLoader loads a firm's stored rule set.
type RuleLoader interface {
	Load(ctx context.Context, firmName string) (*rules.RuleSet, error)
}

// Executor runs compliance checks against stored rule sets.
type Executor struct {
	loader  RuleLoader
	harness sandbox.Harness
	logger  *slog.Logger
}

// New creates a rule executor. The harness is the same execution capability
// used during validation, now invoked for live evaluation.
func New(loader RuleLoader, harness sandbox.Harness) *Executor {
	return &Executor{
		loader:  loader,
		harness: harness,
		logger:  slog.Default().With("component", "rules.executor"),
	}
}

// CheckCompliance evaluates the firm's active, role-applicable rules against
// the trade request, in stored order, and aggregates the verdicts. The
// overall decision is the logical AND of every evaluated rule; any single
// denial denies the trade.
func (e *Executor) CheckCompliance(ctx context.Context, firmName string, employee rules.Employee, security rules.SecurityContext, tradeDate string) (*rules.ComplianceResult, error) {
	result := rules.NewComplianceResult()

	set, err := e.loader.Load(ctx, firmName)
	if err != nil {
		if rules.IsNotFound(err) {
			// No rules means nothing restricts this trade.
			e.logger.Debug("no rule set for firm, allowing by default",
				"firm", firmName,
			)
			return result, nil
		}
		return nil, err
	}

	for i := range set.Rules {
		rule := &set.Rules[i]
		if !rule.Active || !rule.AppliesTo(employee.Role) {
			continue
		}

		verdict, err := e.harness.Evaluate(ctx, rule.SourceCode, employee, security, tradeDate)
		result.RulesChecked = append(result.RulesChecked, rule.RuleID)

		if err != nil {
			// Fail closed: a broken rule must not silently permit a
			// restricted trade.
			failure := &rules.ExecutionFailure{RuleID: rule.RuleID, Cause: err}
			e.logger.Error("rule evaluation failed, denying trade",
				"firm", firmName,
				"rule_id", rule.RuleID,
				"employee_id", employee.ID,
				"error", failure,
			)

			result.Allowed = false
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("rule %q could not be evaluated; trade denied pending review", rule.RuleID))
			if rule.PolicyReference != "" {
				result.PolicyRefs = append(result.PolicyRefs, rule.PolicyReference)
			}
			continue
		}

		if verdict.Allowed {
			continue
		}

		result.Allowed = false
		if verdict.Reason != "" {
			result.Reasons = append(result.Reasons, verdict.Reason)
		}
		if verdict.PolicyRef != "" {
			result.PolicyRefs = append(result.PolicyRefs, verdict.PolicyRef)
		}
	}

	e.logger.Info("compliance check completed",
		"firm", firmName,
		"employee_id", employee.ID,
		"ticker", security.Ticker,
		"allowed", result.Allowed,
		"rules_checked", len(result.RulesChecked),
	)

	return result, nil
}
