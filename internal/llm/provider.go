package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Stream sends a completion request and delivers the response
	// incrementally through fn. It returns the concatenated full text.
	Stream(ctx context.Context, req CompletionRequest, fn FragmentFunc) (string, error)
	// Name returns the name of this provider.
	Name() string
}
