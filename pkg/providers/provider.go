package providers

import "context"

// Provider is the interface every completion provider adapter implements.
// It abstracts the text-generation service the rule generator talks to.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return immediately
// when the context is cancelled.
type Provider interface {
	// Complete sends a completion request to the provider and returns the
	// normalized response. Transient errors (5xx, network) are retried
	// with exponential backoff; auth and rate-limit errors are not.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// HealthCheck sends a lightweight request to verify the provider is
	// reachable. Returns nil if healthy.
	HealthCheck(ctx context.Context) error

	// GetName returns the provider's configured name.
	GetName() string

	// GetType returns the provider's type ("anthropic", "openai").
	GetType() string

	// GetConfig returns the provider's configuration.
	GetConfig() ProviderConfig

	// IsHealthy returns the current health status.
	IsHealthy() bool

	// Close releases resources held by the provider.
	Close() error
}
