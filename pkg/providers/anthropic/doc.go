// Package anthropic implements the providers.Provider interface for
// Anthropic's Messages API.
//
// The adapter transforms provider-agnostic completion requests into the
// Messages API format (system prompt as a separate field, alternating
// user/assistant messages, required max_tokens) and normalizes responses
// back, concatenating text content blocks into a single string.
package anthropic
