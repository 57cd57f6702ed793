package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind distinguishes failure modes of the generation/embedding service.
type ErrorKind string

const (
	ErrKindTimeout     ErrorKind = "timeout"
	ErrKindRateLimited ErrorKind = "rate_limited"
	ErrKindUnavailable ErrorKind = "unavailable"
	ErrKindMalformed   ErrorKind = "malformed"
)

// ServiceError wraps a generation service failure with its kind.
type ServiceError struct {
	Kind ErrorKind
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service %s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// wrapAPIError converts a raw client error into a ServiceError with the
// appropriate kind.
func wrapAPIError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Kind: ErrKindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ServiceError{Kind: ErrKindTimeout, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return &ServiceError{Kind: ErrKindRateLimited, Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ServiceError{Kind: ErrKindUnavailable, Err: err}
		}
	}

	return &ServiceError{Kind: ErrKindMalformed, Err: err}
}

// IsTransient reports whether the error is a retryable service failure
// (timeout, rate limit, or upstream unavailability).
func IsTransient(err error) bool {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return false
	}
	switch svcErr.Kind {
	case ErrKindTimeout, ErrKindRateLimited, ErrKindUnavailable:
		return true
	}
	return false
}

// KindOf returns the error kind, or empty string for non-service errors.
func KindOf(err error) ErrorKind {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}
