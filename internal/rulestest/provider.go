package rulestest

import (
	"context"
	"fmt"
	"sync"

	"mercator-hq/themis/pkg/providers"
)

// FakeProvider is a scripted providers.Provider. Each Complete call
// consumes the next entry from Responses; when the script runs out the
// last entry is repeated. Err, when set, is returned from every call.
type FakeProvider struct {
	mu sync.Mutex

	// Responses are completion contents returned in order.
	Responses []string

	// Err, if non-nil, is returned from every Complete call.
	Err error

	// Requests records every completion request received.
	Requests []*providers.CompletionRequest

	calls int
}

var _ providers.Provider = (*FakeProvider)(nil)

// NewFakeProvider creates a provider that replies with the given
// completions in order.
func NewFakeProvider(responses ...string) *FakeProvider {
	return &FakeProvider{Responses: responses}
}

// Complete returns the next scripted completion.
func (f *FakeProvider) Complete(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)
	f.calls++

	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Responses) == 0 {
		return nil, fmt.Errorf("fake provider has no scripted responses")
	}

	idx := f.calls - 1
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}

	return &providers.CompletionResponse{
		ID:           fmt.Sprintf("fake-%d", f.calls),
		Model:        req.Model,
		Content:      f.Responses[idx],
		FinishReason: "stop",
	}, nil
}

// Calls returns the number of Complete calls received.
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequest returns the most recent completion request, or nil.
func (f *FakeProvider) LastRequest() *providers.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Requests) == 0 {
		return nil
	}
	return f.Requests[len(f.Requests)-1]
}

func (f *FakeProvider) HealthCheck(ctx context.Context) error { return f.Err }
func (f *FakeProvider) GetName() string                       { return "fake" }
func (f *FakeProvider) GetType() string                       { return "fake" }
func (f *FakeProvider) GetConfig() providers.ProviderConfig {
	return providers.ProviderConfig{Name: "fake", Model: "fake-model"}
}
func (f *FakeProvider) IsHealthy() bool { return f.Err == nil }
func (f *FakeProvider) Close() error    { return nil }
