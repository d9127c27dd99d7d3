// Package ratelimit provides rate limiting domain types.
package ratelimit

import (
	"fmt"
	"time"
)

// Config defines the sliding-window rate limit parameters.
type Config struct {
	// Limit is the maximum number of admitted requests per window.
	Limit int

	// Window is the trailing time interval the limit applies to.
	Window time.Duration
}

// ExceededError is returned by Limiter.Admit when an identity has used up
// its window. The message format is part of the REST API contract (the 429
// detail string), so changes here are client-visible.
type ExceededError struct {
	Limit  int
	Window time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("Rate limit exceeded. Max %d requests per minute.", e.Limit)
}

// RetryAfter is the conservative wait hint for clients: after a full window
// has elapsed, at least one slot is guaranteed to be free again.
func (e *ExceededError) RetryAfter() time.Duration {
	return e.Window
}
