// Package pipeline orchestrates the generate-validate-retry loop that turns
// policy text into a validated rule set.
//
// One Generate call produces the initial candidate batch. Each candidate
// then runs an independent state machine:
//
//	GENERATED -> VALIDATING -> PASSED
//	                        -> RETRY -> VALIDATING
//	                        -> EXHAUSTED
//
// A validation failure feeds the validator's classification and output back
// into a regeneration call, replacing the candidate's source, until the rule
// passes or its attempt budget (default 3) is exhausted. Exhausted rules are
// retained inactive for auditability. Candidates are processed concurrently
// under a bounded worker limit; the persisted rule set keeps the original
// candidate order regardless of completion order.
//
// Generator or validator unavailability is scoped to the affected rule and
// consumes an attempt; it never aborts the batch.
package pipeline
