package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mercator-hq/themis/internal/rulestest"
	"mercator-hq/themis/pkg/rules"
)

func TestGenerator_Generate(t *testing.T) {
	response := rulestest.SimpleRuleBlock("r1", "def rule(employee, security, trade_date):\n    return {\"allowed\": True}") +
		"\n\n" + rulestest.SimpleRuleBlock("r2", "def rule(employee, security, trade_date):\n    return {\"allowed\": False}")
	provider := rulestest.NewFakeProvider(response)
	gen := New(provider, &Config{Model: "test-model"})

	generated, err := gen.Generate(context.Background(), rules.GenerationContext{
		FirmName:   "Meridian Capital",
		PolicyText: "No trading in restricted securities.",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(generated) != 2 {
		t.Fatalf("Generate() returned %d rules, want 2", len(generated))
	}
	if generated[0].RuleID != "r1" || generated[1].RuleID != "r2" {
		t.Errorf("rule IDs = [%s, %s], want [r1, r2]", generated[0].RuleID, generated[1].RuleID)
	}

	req := provider.LastRequest()
	if req == nil {
		t.Fatal("provider received no request")
	}
	if req.Model != "test-model" {
		t.Errorf("request model = %q, want %q", req.Model, "test-model")
	}
	if len(req.Messages) != 1 {
		t.Fatalf("request carried %d messages, want 1", len(req.Messages))
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "Meridian Capital") {
		t.Error("prompt does not carry the firm name")
	}
	if !strings.Contains(prompt, "No trading in restricted securities.") {
		t.Error("prompt does not carry the policy text")
	}
}

func TestGenerator_Generate_SkipsMalformedBlocks(t *testing.T) {
	good := rulestest.SimpleRuleBlock("r1", "def rule(employee, security, trade_date):\n    return {\"allowed\": True}")
	malformed := strings.Replace(
		rulestest.SimpleRuleBlock("r2", "pass"),
		"RULE_ID: r2\n", "", 1)
	provider := rulestest.NewFakeProvider(good + "\n" + malformed)
	gen := New(provider, &Config{Model: "test-model"})

	generated, err := gen.Generate(context.Background(), rules.GenerationContext{
		FirmName:   "Meridian Capital",
		PolicyText: "policy",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(generated) != 1 || generated[0].RuleID != "r1" {
		t.Errorf("Generate() = %v, want just r1", generated)
	}
}

func TestGenerator_Generate_EmptyResponse(t *testing.T) {
	provider := rulestest.NewFakeProvider("no rules could be derived")
	gen := New(provider, &Config{Model: "test-model"})

	generated, err := gen.Generate(context.Background(), rules.GenerationContext{
		FirmName:   "Meridian Capital",
		PolicyText: "policy",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v, want nil for empty parse", err)
	}
	if len(generated) != 0 {
		t.Errorf("Generate() returned %d rules, want 0", len(generated))
	}
}

func TestGenerator_Generate_ProviderError(t *testing.T) {
	provider := rulestest.NewFakeProvider()
	provider.Err = errors.New("connection refused")
	gen := New(provider, &Config{Model: "test-model"})

	_, err := gen.Generate(context.Background(), rules.GenerationContext{
		FirmName:   "Meridian Capital",
		PolicyText: "policy",
	})

	var gerr *rules.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("Generate() error = %T, want *rules.GenerationError", err)
	}
	if !errors.Is(err, provider.Err) {
		t.Error("GenerationError does not wrap the provider error")
	}
}

func TestGenerator_Regenerate_CarriesPreviousAttempt(t *testing.T) {
	provider := rulestest.NewFakeProvider(
		rulestest.SimpleRuleBlock("r1", "def rule(employee, security, trade_date):\n    return {\"allowed\": True}"))
	gen := New(provider, &Config{Model: "test-model"})

	failedCode := "def rule(employee, security, trade_date):\n    return {\"allowed\" True}"
	_, err := gen.Regenerate(context.Background(), rules.GenerationContext{
		FirmName:   "Meridian Capital",
		PolicyText: "policy",
		PreviousAttempt: &rules.PreviousAttempt{
			Code:        failedCode,
			Error:       "syntax_error: invalid syntax on line 2",
			TestResults: "SyntaxError: invalid syntax",
		},
	})
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	prompt := provider.LastRequest().Messages[0].Content
	if !strings.Contains(prompt, failedCode) {
		t.Error("regeneration prompt does not carry the failed code")
	}
	if !strings.Contains(prompt, "syntax_error: invalid syntax on line 2") {
		t.Error("regeneration prompt does not carry the exact error message")
	}
	if !strings.Contains(prompt, "SyntaxError: invalid syntax") {
		t.Error("regeneration prompt does not carry the test output")
	}
}

func TestGenerator_Regenerate_RequiresPreviousAttempt(t *testing.T) {
	provider := rulestest.NewFakeProvider("unused")
	gen := New(provider, &Config{Model: "test-model"})

	_, err := gen.Regenerate(context.Background(), rules.GenerationContext{
		FirmName:   "Meridian Capital",
		PolicyText: "policy",
	})

	var cerr *rules.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Regenerate() error = %T, want *rules.ConfigurationError", err)
	}
	if provider.Calls() != 0 {
		t.Error("Regenerate() contacted the provider despite missing previous attempt")
	}
}
