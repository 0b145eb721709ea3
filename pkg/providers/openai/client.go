package openai

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/themis/pkg/providers"
)

// Provider is the OpenAI provider adapter.
// It implements the providers.Provider interface for the Chat Completions
// API, which also covers OpenAI-compatible self-hosted endpoints.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new OpenAI provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "openai",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com"
	}

	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for OpenAI",
		}
	}

	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
	}

	slog.Info("OpenAI provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// Complete sends a completion request to OpenAI.
func (p *Provider) Complete(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if req == nil {
		return nil, &providers.ValidationError{Field: "request", Message: "request cannot be nil"}
	}
	if req.Model == "" {
		return nil, &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return nil, &providers.ValidationError{Field: "messages", Message: "at least one message is required"}
	}

	openaiReq := transformRequest(req)

	url := fmt.Sprintf("%s/v1/chat/completions", p.GetConfig().BaseURL)
	headers := map[string]string{
		"Authorization": "Bearer " + p.GetConfig().APIKey,
		"Content-Type":  "application/json",
	}

	var openaiResp ChatResponse
	if err := p.DoJSONRequest(ctx, "POST", url, openaiReq, &openaiResp, headers); err != nil {
		return nil, err
	}

	resp, err := transformResponse(&openaiResp)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: p.GetName(),
			Cause:    err,
		}
	}

	slog.Debug("completion request succeeded",
		"provider", p.GetName(),
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return resp, nil
}

// HealthCheck sends a minimal completion request to verify connectivity.
func (p *Provider) HealthCheck(ctx context.Context) error {
	req := &providers.CompletionRequest{
		Model: p.GetConfig().Model,
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "ping"},
		},
		MaxTokens: 1,
	}

	if _, err := p.Complete(ctx, req); err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}
