package generator

import (
	"context"
	"log/slog"
	"strings"

	"mercator-hq/themis/pkg/providers"
	"mercator-hq/themis/pkg/rules"
)

// Config contains configuration for the rule generator.
type Config struct {
	// Model is the model identifier for completion requests.
	Model string

	// MaxTokens caps the response length. Default: 3000.
	MaxTokens int

	// Temperature controls randomness. Rule generation wants determinism,
	// so the default is 0.
	Temperature float64
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxTokens:   3000,
		Temperature: 0,
	}
}

// Generator converts policy text into candidate compliance rules through a
// completion provider.
type Generator struct {
	provider providers.Provider
	config   *Config
	logger   *slog.Logger
}

// New creates a rule generator backed by the given completion provider.
func New(provider providers.Provider, config *Config) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 3000
	}
	if config.Model == "" {
		config.Model = provider.GetConfig().Model
	}

	return &Generator{
		provider: provider,
		config:   config,
		logger:   slog.Default().With("component", "rules.generator"),
	}
}

// Generate builds the initial generation prompt from the context's firm and
// policy text, requests a completion, and parses the response into zero or
// more candidate rules. An empty parse result is not an error.
func (g *Generator) Generate(ctx context.Context, gctx rules.GenerationContext) ([]rules.Rule, error) {
	prompt := buildInitialPrompt(gctx.FirmName, gctx.PolicyText)
	return g.complete(ctx, gctx.FirmName, prompt)
}

// Regenerate builds a refinement prompt embedding the previous attempt's
// code, error classification, and test output. It fails with a
// ConfigurationError if the context has no previous attempt.
func (g *Generator) Regenerate(ctx context.Context, gctx rules.GenerationContext) ([]rules.Rule, error) {
	if gctx.PreviousAttempt == nil {
		return nil, &rules.ConfigurationError{
			Message: "previous attempt is required when regenerating a rule",
		}
	}

	prompt := buildRegenerationPrompt(
		gctx.FirmName,
		gctx.PolicyText,
		gctx.PreviousAttempt.Code,
		gctx.PreviousAttempt.Error,
		gctx.PreviousAttempt.TestResults,
	)
	return g.complete(ctx, gctx.FirmName, prompt)
}

// complete sends the prompt and parses the response.
func (g *Generator) complete(ctx context.Context, firmName, prompt string) ([]rules.Rule, error) {
	req := &providers.CompletionRequest{
		Model:       g.config.Model,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: prompt},
		},
	}

	resp, err := g.provider.Complete(ctx, req)
	if err != nil {
		return nil, &rules.GenerationError{Cause: err}
	}

	blocks := ParseResponse(resp.Content)

	parsed := make([]rules.Rule, 0, len(blocks))
	for _, block := range blocks {
		if block.Outcome == BlockMalformed {
			g.logger.Warn("skipping malformed rule block",
				"firm", firmName,
				"missing", strings.Join(block.Missing, ", "),
			)
			continue
		}
		parsed = append(parsed, *block.Rule)
	}

	g.logger.Debug("parsed generation response",
		"firm", firmName,
		"blocks", len(blocks),
		"rules", len(parsed),
		"tokens", resp.Usage.TotalTokens,
	)

	return parsed, nil
}
