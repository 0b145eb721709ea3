package providers

import "time"

// Message represents a single message in a conversation.
// It is provider-agnostic and transformed to provider-specific formats by
// each adapter.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens used (prompt + completion)
	TotalTokens int `json:"total_tokens"`
}

// CompletionRequest represents a provider-agnostic completion request.
type CompletionRequest struct {
	// Model is the model identifier
	Model string `json:"model"`

	// System is an optional system prompt
	System string `json:"system,omitempty"`

	// Messages is the conversation history
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 1.0)
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stop sequences that will halt generation
	Stop []string `json:"stop,omitempty"`
}

// CompletionResponse represents a provider-agnostic completion response.
type CompletionResponse struct {
	// ID is the provider-assigned response identifier
	ID string `json:"id"`

	// Model is the model that produced the completion
	Model string `json:"model"`

	// Content is the generated text
	Content string `json:"content"`

	// FinishReason explains why generation stopped ("stop", "length")
	FinishReason string `json:"finish_reason"`

	// Usage reports token consumption
	Usage TokenUsage `json:"usage"`
}

// ProviderHealth tracks the health status of a provider.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential failures
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// ProviderConfig contains configuration for a single provider instance.
type ProviderConfig struct {
	// Name is the provider identifier (e.g., "anthropic")
	Name string

	// Type is the provider type (anthropic, openai)
	Type string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Model is the default model for completion requests
	Model string

	// Timeout is the request timeout duration
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts
	MaxRetries int

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)
