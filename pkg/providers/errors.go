package providers

import (
	"fmt"
	"time"
)

// ProviderError represents a general provider error.
// It includes the provider name, HTTP status code, and underlying error.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure.
// This occurs when the provider rejects the API key (HTTP 401 or 403).
type AuthError struct {
	// Provider is the name of the provider that rejected authentication
	Provider string

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
// It includes the retry-after duration if provided by the provider.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request
	Provider string

	// RetryAfter is the duration to wait before retrying (if provided)
	RetryAfter time.Duration

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limited (retry after %s): %s", e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limited: %s", e.Provider, e.Message)
}

// TimeoutError represents a request timeout.
type TimeoutError struct {
	// Provider is the name of the provider that timed out
	Provider string

	// Timeout is the configured timeout that was exceeded
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timed out after %s", e.Provider, e.Timeout)
}

// ParseError represents a failure to parse the provider's response.
type ParseError struct {
	// Provider is the name of the provider whose response failed to parse
	Provider string

	// RawResponse is the unparseable response body (may be truncated)
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse failed: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an invalid completion request.
type ValidationError struct {
	// Field is the invalid request field
	Field string

	// Message describes the problem
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid completion request: field %q: %s", e.Field, e.Message)
}

// ConfigError represents an invalid provider configuration.
type ConfigError struct {
	// Provider is the provider being configured
	Provider string

	// Field is the invalid configuration field
	Field string

	// Message describes the problem
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q config error: field %q: %s", e.Provider, e.Field, e.Message)
}
