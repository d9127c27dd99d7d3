package transformerbee

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized is returned when the server rejects the bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when the caller exceeded the rate limit.
	ErrRateLimited = errors.New("rate limited")

	// ErrServerUnreachable is returned when the server cannot be contacted.
	ErrServerUnreachable = errors.New("server unreachable")
)

// APIError is returned for any error response not covered by a more specific
// error type.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Detail is the server's error description.
	Detail string
}

// Error returns a human-readable description of the API error.
func (e *APIError) Error() string {
	return fmt.Sprintf("transformerbee-mcp returned status %d: %s", e.StatusCode, e.Detail)
}

// UnauthorizedError is returned when the server rejects the bearer token or
// none was provided.
type UnauthorizedError struct {
	// Detail is the server's error description.
	Detail string
}

// Error returns a human-readable description of the authentication failure.
func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Detail)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrUnauthorized).
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// RateLimitedError is returned when the caller exceeded the per-identity
// rate limit.
type RateLimitedError struct {
	// Detail is the server's error description.
	Detail string
}

// Error returns a human-readable description of the throttling.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.Detail)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrRateLimited).
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// ServerUnreachableError is returned when the server cannot be contacted.
type ServerUnreachableError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns a human-readable description of the connection failure.
func (e *ServerUnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("server unreachable: %v", e.Cause)
	}
	return "server unreachable"
}

// Unwrap returns the underlying error cause.
func (e *ServerUnreachableError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrServerUnreachable).
func (e *ServerUnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}
