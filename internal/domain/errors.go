package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimited is returned when the server signals throttling (429)
	// or the rate-limit guard refuses a call during a cooldown window.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServerError is returned for 5xx responses.
	ErrServerError = errors.New("server error")

	// ErrClientError is returned for non-429 4xx responses; never retried.
	ErrClientError = errors.New("client error")

	// ErrNetwork is returned for connectivity, DNS and timeout failures.
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponse is returned for a malformed HTTP exchange.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrDecoding is returned when the response body cannot be parsed.
	ErrDecoding = errors.New("response decoding failed")
)

// LookupError classifies a failed food lookup at the transport boundary.
// The retry controller is the only consumer of the classification.
type LookupError struct {
	Kind          error // one of the sentinel errors above
	StatusCode    int
	RetryAfter    time.Duration
	HasRetryAfter bool
	Cause         error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.Error()
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause chain.
func (e *LookupError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is matches against the sentinel kind.
func (e *LookupError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Retryable reports whether the failure class is worth another attempt:
// rate limiting, server errors and transport failures are; client errors
// and undecodable responses are terminal.
func (e *LookupError) Retryable() bool {
	switch e.Kind {
	case ErrRateLimited, ErrServerError, ErrNetwork:
		return true
	default:
		return false
	}
}

// RateLimitedError builds a LookupError for a 429 response. hasDelay is
// false when the server sent no parseable Retry-After header.
func RateLimitedError(retryAfter time.Duration, hasDelay bool) *LookupError {
	return &LookupError{
		Kind:          ErrRateLimited,
		StatusCode:    429,
		RetryAfter:    retryAfter,
		HasRetryAfter: hasDelay,
	}
}

// ServerError builds a LookupError for a 5xx response.
func ServerError(status int) *LookupError {
	return &LookupError{Kind: ErrServerError, StatusCode: status}
}

// ClientError builds a LookupError for a non-429 4xx response.
func ClientError(status int) *LookupError {
	return &LookupError{Kind: ErrClientError, StatusCode: status}
}

// NetworkError wraps a connectivity, DNS or timeout failure.
func NetworkError(cause error) *LookupError {
	return &LookupError{Kind: ErrNetwork, Cause: cause}
}

// DecodingError wraps a body that could not be parsed.
func DecodingError(cause error) *LookupError {
	return &LookupError{Kind: ErrDecoding, Cause: cause}
}
