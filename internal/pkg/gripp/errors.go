package gripp

import (
	"errors"
	"fmt"
	"time"
)

// APIError is a well-formed error envelope from the upstream API. It is
// surfaced immediately and never retried by the queue; retrying an
// application-level error is the caller's call.
type APIError struct {
	Method  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gripp API error on %s: %s", e.Method, e.Message)
}

// TransientError covers HTTP 503 and transport failures. The queue
// re-inserts the request at the head and retries up to the request's
// attempt bound.
type TransientError struct {
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gripp transient failure: %v", e.Err)
	}
	return fmt.Sprintf("gripp transient failure: HTTP %d", e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RateLimitedError covers HTTP 429. RetryAfter is zero when the upstream
// sent no Retry-After header.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("gripp rate limited, retry after %s", e.RetryAfter)
}

// ValidationError flags a malformed request rejected before any I/O.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "gripp request invalid: " + e.Message
}

// ErrQueueClosed is returned for requests enqueued after Close.
var ErrQueueClosed = errors.New("gripp: request queue closed")

// ErrAttemptsExhausted wraps the last transient/rate-limit error once the
// request's attempt bound is spent.
var ErrAttemptsExhausted = errors.New("gripp: retry attempts exhausted")
