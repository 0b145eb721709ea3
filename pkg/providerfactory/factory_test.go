package providerfactory

import (
	"errors"
	"testing"

	"mercator-hq/themis/pkg/providers"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   providers.ProviderConfig
		wantType string
		wantErr  bool
	}{
		{
			name:     "explicit anthropic",
			config:   providers.ProviderConfig{Name: "primary", Type: "anthropic", APIKey: "sk-ant-test", Model: "claude-sonnet-4-20250514"},
			wantType: "anthropic",
		},
		{
			name:     "explicit openai",
			config:   providers.ProviderConfig{Name: "primary", Type: "openai", APIKey: "sk-test", Model: "gpt-4o"},
			wantType: "openai",
		},
		{
			name:     "type inferred from name",
			config:   providers.ProviderConfig{Name: "anthropic-prod", APIKey: "sk-ant-test", Model: "claude-sonnet-4-20250514"},
			wantType: "anthropic",
		},
		{
			name:     "claude name infers anthropic",
			config:   providers.ProviderConfig{Name: "claude", APIKey: "sk-ant-test", Model: "claude-sonnet-4-20250514"},
			wantType: "anthropic",
		},
		{
			name:    "unknown type",
			config:  providers.ProviderConfig{Name: "primary", Type: "bedrock", APIKey: "k", Model: "m"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var cfgErr *providers.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("error type = %T, want ConfigError", err)
				}
				return
			}
			if got := p.GetType(); got != tt.wantType {
				t.Errorf("GetType() = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestNewProvider_MissingAPIKey(t *testing.T) {
	_, err := NewProvider(providers.ProviderConfig{
		Name:  "primary",
		Type:  "anthropic",
		Model: "claude-sonnet-4-20250514",
	})
	if err == nil {
		t.Error("NewProvider() error = nil without an API key")
	}
}
