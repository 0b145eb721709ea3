// Package openai implements the providers.Provider interface for the
// OpenAI Chat Completions API and OpenAI-compatible endpoints.
package openai
