package ratelimit

import (
	"context"
	"time"
)

// Limiter is the interface for per-identity admission control.
//
// Implementations use a trimmed sliding window: on every check the stored
// timestamps outside the trailing window are discarded, the remaining count
// is compared against the limit, and only then is the current request
// recorded. This avoids the burst artifacts of fixed buckets at window
// boundaries.
//
// The interface is storage-agnostic so the in-memory guarded map used here
// can later be swapped for a distributed store without touching callers.
type Limiter interface {
	// Admit checks whether a request by identity is allowed at time now.
	// It returns nil and records the request, or an *ExceededError without
	// recording anything (rejected attempts must not consume window slots).
	//
	// The prune-check-append sequence for a single identity is one
	// indivisible critical section with respect to concurrent callers.
	Admit(ctx context.Context, identity string, now time.Time) error
}
