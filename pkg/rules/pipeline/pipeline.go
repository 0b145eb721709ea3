package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/themis/pkg/rules"
	"mercator-hq/themis/pkg/rules/sandbox"
)

// GeneratorService is the rule-generation dependency.
type GeneratorService interface {
	Generate(ctx context.Context, gctx rules.GenerationContext) ([]rules.Rule, error)
	Regenerate(ctx context.Context, gctx rules.GenerationContext) ([]rules.Rule, error)
}

// RuleStore persists the finished rule set.
type RuleStore interface {
	Save(ctx context.Context, firmName string, set []rules.Rule, totalIterations int) (*rules.RuleSet, error)
}

// Metrics receives pipeline telemetry. All methods must be safe for
// concurrent use.
type Metrics interface {
	// RecordRuleState is called once per rule with its terminal state
	// ("passed" or "exhausted").
	RecordRuleState(state string)

	// RecordValidationAttempt is called for every sandbox validation.
	// outcome is "passed" or "failed"; classification is the failure
	// classification, or "" for passing attempts.
	RecordValidationAttempt(outcome, classification string)
}

type noopMetrics struct{}

func (noopMetrics) RecordRuleState(string)                 {}
func (noopMetrics) RecordValidationAttempt(string, string) {}

// Config contains configuration for the iterative pipeline.
type Config struct {
	// MaxAttempts is the per-rule generation budget. Default: 3.
	MaxAttempts int

	// Concurrency bounds how many candidate rules validate in parallel,
	// to avoid overwhelming the generator and sandbox. Default: 4.
	Concurrency int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Concurrency: 4,
	}
}

// Pipeline drives candidate rules through generation, validation, and
// feedback-guided regeneration, then hands the finished set to the store.
type Pipeline struct {
	generator GeneratorService
	harness   sandbox.Harness
	store     RuleStore
	config    *Config
	logger    *slog.Logger
	metrics   Metrics
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithMetrics attaches a metrics recorder to the pipeline.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger overrides the pipeline's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger.With("component", "rules.pipeline")
		}
	}
}

// New creates an iterative pipeline.
func New(generator GeneratorService, harness sandbox.Harness, store RuleStore, config *Config, opts ...Option) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}

	p := &Pipeline{
		generator: generator,
		harness:   harness,
		store:     store,
		config:    config,
		logger:    slog.Default().With("component", "rules.pipeline"),
		metrics:   noopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessPolicy converts policy text into a validated, persisted rule set
// for the firm. Candidates are processed independently: one rule failing or
// exhausting its budget never aborts the batch. The returned rule set is the
// one confirmed by the store.
func (p *Pipeline) ProcessPolicy(ctx context.Context, policyText, firmName string) (*rules.RuleSet, error) {
	if firmName == "" {
		return nil, &rules.RequestValidationError{Field: "firm_name", Message: "firm name is required"}
	}
	if policyText == "" {
		return nil, &rules.RequestValidationError{Field: "policy_text", Message: "policy text is required"}
	}

	candidates, err := p.generator.Generate(ctx, rules.GenerationContext{
		FirmName:   firmName,
		PolicyText: policyText,
	})
	if err != nil {
		return nil, fmt.Errorf("initial generation failed: %w", err)
	}

	p.logger.Info("policy generated candidate rules",
		"firm", firmName,
		"candidates", len(candidates),
	)

	// Candidates run concurrently under a bounded worker limit. Results
	// land at the candidate's original index so the persisted order is
	// deterministic regardless of completion order.
	finished := make([]rules.Rule, len(candidates))
	sem := make(chan struct{}, p.config.Concurrency)
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, candidate rules.Rule) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			finished[idx] = p.processRule(ctx, policyText, firmName, candidate)
		}(i, candidate)
	}
	wg.Wait()

	totalIterations := 0
	for _, rule := range finished {
		totalIterations += rule.GenerationAttempt
	}

	saved, err := p.store.Save(ctx, firmName, finished, totalIterations)
	if err != nil {
		return nil, err
	}

	p.logger.Info("policy ingestion completed",
		"firm", firmName,
		"rules", len(saved.Rules),
		"total_iterations", saved.TotalIterations,
	)

	return saved, nil
}

// processRule drives one candidate through the state machine to a terminal
// state. It issues at most MaxAttempts sandbox validations.
func (p *Pipeline) processRule(ctx context.Context, policyText, firmName string, candidate rules.Rule) rules.Rule {
	rule := candidate
	state := StateGenerated

	for !state.Terminal() {
		state = StateValidating

		outcome := p.validate(ctx, &rule)
		if outcome.Passed {
			p.metrics.RecordValidationAttempt("passed", "")
			rule.Active = true
			rule.ValidationHistory = append(rule.ValidationHistory, rules.ValidationAttempt{
				AttemptNumber: rule.GenerationAttempt,
				Passed:        true,
				TestOutput:    outcome.TestOutput,
				Timestamp:     time.Now().UTC(),
			})
			state = StatePassed
			p.metrics.RecordRuleState("passed")
			p.logger.Info("rule validated",
				"firm", firmName,
				"rule_id", rule.RuleID,
				"attempts", rule.GenerationAttempt,
			)
			continue
		}

		p.metrics.RecordValidationAttempt("failed", string(outcome.Classification))

		if rule.GenerationAttempt >= p.config.MaxAttempts {
			rule.Active = false
			rule.ValidationHistory = append(rule.ValidationHistory, rules.ValidationAttempt{
				AttemptNumber: rule.GenerationAttempt,
				Passed:        false,
				Error:         outcome.FailureText(),
				TestOutput:    outcome.TestOutput,
				Timestamp:     time.Now().UTC(),
			})
			state = StateExhausted
			p.metrics.RecordRuleState("exhausted")
			p.logger.Warn("rule exhausted retry budget, retained inactive",
				"firm", firmName,
				"rule_id", rule.RuleID,
				"attempts", rule.GenerationAttempt,
			)
			continue
		}

		feedback := fmt.Sprintf("Attempt %d failed (%s). Fix the defect while preserving the rule's intent.",
			rule.GenerationAttempt, outcome.FailureText())

		rule.ValidationHistory = append(rule.ValidationHistory, rules.ValidationAttempt{
			AttemptNumber: rule.GenerationAttempt,
			Passed:        false,
			Error:         outcome.FailureText(),
			TestOutput:    outcome.TestOutput,
			FeedbackToLLM: feedback,
			Timestamp:     time.Now().UTC(),
		})

		state = StateRetry
		p.regenerate(ctx, policyText, firmName, &rule, outcome)
	}

	return rule
}

// validate submits the rule's source to the sandbox. Sandbox unavailability
// is folded into a failed outcome so it consumes an attempt like any other
// validation failure.
func (p *Pipeline) validate(ctx context.Context, rule *rules.Rule) *sandbox.Outcome {
	outcome, err := p.harness.Validate(ctx, rule.SourceCode)
	if err != nil {
		verr := &rules.ValidationError{RuleID: rule.RuleID, Cause: err}
		p.logger.Warn("sandbox unavailable, counting as failed attempt",
			"rule_id", rule.RuleID,
			"error", verr,
		)
		return &sandbox.Outcome{
			Passed:  false,
			Message: verr.Error(),
		}
	}
	return outcome
}

// regenerate asks the generator for a corrected rule and swaps in its code
// and descriptive fields. The generation round trip is consumed whether or
// not it succeeds; on failure the current code is kept for the next
// validation attempt.
func (p *Pipeline) regenerate(ctx context.Context, policyText, firmName string, rule *rules.Rule, outcome *sandbox.Outcome) {
	previous := &rules.PreviousAttempt{
		Code:        rule.SourceCode,
		Error:       outcome.FailureText(),
		TestResults: outcome.TestOutput,
	}

	regenerated, err := p.generator.Regenerate(ctx, rules.GenerationContext{
		FirmName:        firmName,
		PolicyText:      policyText,
		PreviousAttempt: previous,
	})

	rule.GenerationAttempt++

	if err != nil {
		gerr := &rules.GenerationError{RuleID: rule.RuleID, Cause: err}
		p.logger.Warn("regeneration failed, keeping current code",
			"rule_id", rule.RuleID,
			"error", gerr,
		)
		return
	}
	if len(regenerated) == 0 {
		p.logger.Warn("regeneration returned no rules, keeping current code",
			"rule_id", rule.RuleID,
		)
		return
	}

	replacement := regenerated[0]
	rule.SourceCode = replacement.SourceCode
	rule.RuleName = replacement.RuleName
	rule.Description = replacement.Description
	rule.PolicyReference = replacement.PolicyReference
}
