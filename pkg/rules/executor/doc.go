// Package executor evaluates a firm's active rules against a trade request
// and aggregates the per-rule verdicts into one compliance decision.
//
// A firm with no stored rules is defined as "nothing restricts this trade":
// the check allows. A rule that errors at evaluation time is fail-closed: it
// denies with a synthetic reason naming the rule, so a broken rule can never
// silently permit a restricted trade.
package executor
