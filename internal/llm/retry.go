package llm

import (
	"context"
	"time"
)

const (
	defaultMaxRetries   = 3
	defaultInitialDelay = 200 * time.Millisecond
	defaultMaxDelay     = 8 * time.Second
)

// RetryingProvider wraps a Provider with bounded exponential backoff on
// transient service failures. Malformed responses are never retried here;
// callers handle those through their own regeneration policies.
type RetryingProvider struct {
	provider     Provider
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewRetryingProvider wraps the given provider with default retry settings.
func NewRetryingProvider(provider Provider) *RetryingProvider {
	return &RetryingProvider{
		provider:     provider,
		maxRetries:   defaultMaxRetries,
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
	}
}

func (r *RetryingProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	delay := r.initialDelay

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}

		resp, err := r.provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (r *RetryingProvider) Stream(ctx context.Context, req CompletionRequest, fn FragmentFunc) (string, error) {
	// A stream is only retried when it failed before producing any output;
	// retrying mid-stream would duplicate fragments already delivered to fn.
	var lastErr error
	delay := r.initialDelay

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}

		text, err := r.provider.Stream(ctx, req, fn)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if text != "" || !IsTransient(err) {
			return text, err
		}
	}

	return "", lastErr
}
