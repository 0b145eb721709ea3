// Package providerfactory creates completion provider instances from
// configuration. It lives outside pkg/providers so adapters can import the
// shared abstraction without an import cycle.
package providerfactory

import (
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/themis/pkg/providers"
	"mercator-hq/themis/pkg/providers/anthropic"
	"mercator-hq/themis/pkg/providers/openai"
)

// NewProvider creates a new provider instance based on the configuration.
//
// Supported provider types:
//   - "anthropic": Anthropic Messages API
//   - "openai": OpenAI Chat Completions API and compatible endpoints
//
// The provider type is determined from the config.Type field. If not
// specified, it is inferred from the provider name.
func NewProvider(config providers.ProviderConfig) (providers.Provider, error) {
	providerType := config.Type
	if providerType == "" {
		providerType = inferProviderType(config.Name)
		config.Type = providerType
	}

	slog.Debug("creating provider",
		"name", config.Name,
		"type", providerType,
		"base_url", config.BaseURL,
	)

	var provider providers.Provider
	var err error

	switch providerType {
	case "anthropic":
		provider, err = anthropic.NewProvider(config)

	case "openai":
		provider, err = openai.NewProvider(config)

	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: anthropic, openai)", providerType),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", config.Name, err)
	}

	return provider, nil
}

// inferProviderType guesses the provider type from its name.
func inferProviderType(name string) string {
	switch {
	case strings.Contains(strings.ToLower(name), "anthropic"):
		return "anthropic"
	case strings.Contains(strings.ToLower(name), "claude"):
		return "anthropic"
	default:
		return "openai"
	}
}
