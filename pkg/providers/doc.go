// Package providers defines the completion-provider abstraction used by the
// rule generator and query parser to reach a text-generation service.
//
// The Provider interface normalizes request and response shapes across
// providers. HTTPProvider is the shared base for HTTP adapters: it supplies
// connection pooling, timeout handling, retry with exponential backoff for
// transient errors, and health tracking with circuit breaking after
// consecutive failures.
//
// Concrete adapters live in subpackages (anthropic, openai) and only
// implement the provider-specific request/response transforms.
package providers
