package rulestest

import (
	"context"
	"sync"

	"mercator-hq/themis/pkg/rules"
	"mercator-hq/themis/pkg/rules/sandbox"
)

// FakeHarness is a scripted sandbox.Harness. Behavior is controlled by
// the ValidateFunc and EvaluateFunc hooks; unset hooks default to
// passing validation and an allowing verdict.
type FakeHarness struct {
	mu sync.Mutex

	// ValidateFunc decides the outcome for a validation call. call is
	// the 1-based number of Validate calls seen for this source.
	ValidateFunc func(source string, call int) (*sandbox.Outcome, error)

	// EvaluateFunc decides the verdict for an execution call.
	EvaluateFunc func(source string, employee rules.Employee, security rules.SecurityContext, tradeDate string) (*sandbox.Verdict, error)

	validatedSources []string
	evaluatedSources []string
	callsBySource    map[string]int
}

var _ sandbox.Harness = (*FakeHarness)(nil)

// NewFakeHarness creates a harness that passes every validation and
// allows every trade until its hooks are replaced.
func NewFakeHarness() *FakeHarness {
	return &FakeHarness{callsBySource: make(map[string]int)}
}

// Validate returns the scripted outcome for the rule source.
func (f *FakeHarness) Validate(ctx context.Context, ruleSource string) (*sandbox.Outcome, error) {
	f.mu.Lock()
	f.validatedSources = append(f.validatedSources, ruleSource)
	f.callsBySource[ruleSource]++
	call := f.callsBySource[ruleSource]
	fn := f.ValidateFunc
	f.mu.Unlock()

	if fn == nil {
		return &sandbox.Outcome{Passed: true, TestOutput: "all fixtures passed"}, nil
	}
	return fn(ruleSource, call)
}

// Evaluate returns the scripted verdict for the rule source.
func (f *FakeHarness) Evaluate(ctx context.Context, ruleSource string, employee rules.Employee, security rules.SecurityContext, tradeDate string) (*sandbox.Verdict, error) {
	f.mu.Lock()
	f.evaluatedSources = append(f.evaluatedSources, ruleSource)
	fn := f.EvaluateFunc
	f.mu.Unlock()

	if fn == nil {
		return &sandbox.Verdict{Allowed: true}, nil
	}
	return fn(ruleSource, employee, security, tradeDate)
}

// ValidatedSources returns every rule source submitted for validation,
// in call order.
func (f *FakeHarness) ValidatedSources() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.validatedSources...)
}

// EvaluatedSources returns every rule source submitted for execution,
// in call order.
func (f *FakeHarness) EvaluatedSources() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.evaluatedSources...)
}

// ValidateCalls returns the total number of Validate calls received.
func (f *FakeHarness) ValidateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.validatedSources)
}
