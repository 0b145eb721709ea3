package rules

import (
	"errors"
	"fmt"
)

// RequestValidationError indicates a caller supplied invalid or missing
// input. It is reported to the caller before any side effects occur.
type RequestValidationError struct {
	// Field is the offending input field.
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *RequestValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid request: field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid request: %s", e.Message)
}

// NotFoundError indicates a firm or employee is unknown. It is surfaced as a
// not-found outcome, never retried.
type NotFoundError struct {
	// Kind names the missing entity ("firm", "employee").
	Kind string

	// Key is the lookup key that had no match.
	Key string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// GenerationError indicates the generation service failed for one candidate
// rule. It is scoped to that rule and consumed by the pipeline's retry
// budget; it never fails the whole ingestion.
type GenerationError struct {
	// RuleID identifies the affected candidate, empty for the initial batch.
	RuleID string

	// Cause is the underlying provider or parse error.
	Cause error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("generation failed for rule %q: %v", e.RuleID, e.Cause)
	}
	return fmt.Sprintf("generation failed: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates the sandbox validator was unreachable or failed
// out-of-band for one candidate rule. Like GenerationError it counts against
// the rule's retry budget rather than aborting the ingestion.
type ValidationError struct {
	// RuleID identifies the affected candidate.
	RuleID string

	// Cause is the underlying transport or sandbox error.
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for rule %q: %v", e.RuleID, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// PersistenceError indicates a durable read or write failed. Callers see a
// generic failure; internal details are logged only. State is left as it was
// before the failed operation.
type PersistenceError struct {
	// Op is the storage operation that failed ("save", "load", "sweep").
	Op string

	// Cause is the underlying storage error.
	Cause error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("rule store %s failed: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// ExecutionFailure indicates a stored rule errored while being evaluated
// against a live trade request. The executor converts it to a fail-closed
// denial; it is never surfaced as a hard error to the compliance caller.
type ExecutionFailure struct {
	// RuleID identifies the rule that failed to evaluate.
	RuleID string

	// Cause is the underlying sandbox or transport error.
	Cause error
}

// Error implements the error interface.
func (e *ExecutionFailure) Error() string {
	return fmt.Sprintf("rule %q failed during evaluation: %v", e.RuleID, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ExecutionFailure) Unwrap() error {
	return e.Cause
}

// ConfigurationError indicates a component was invoked with an invalid or
// incomplete configuration, such as a regeneration call without a previous
// attempt.
type ConfigurationError struct {
	// Message describes the misconfiguration.
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}
