// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/ratelimit"
)

// SlidingWindowLimiter implements ratelimit.Limiter with a trimmed sliding
// window per identity. Thread-safe: one mutex guards the whole map, making
// the prune-check-append sequence for an identity a single critical section.
//
// Entries within an identity are pruned lazily on each check, so a single
// identity's slice is bounded by the limit. The set of identities itself is
// not evicted; that is acceptable for the bounded user population this
// gateway serves and intentionally left as-is until a requirement says
// otherwise.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	config  ratelimit.Config
	logger  *slog.Logger
}

// NewSlidingWindowLimiter creates a limiter with the given config.
func NewSlidingWindowLimiter(config ratelimit.Config, logger *slog.Logger) *SlidingWindowLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlidingWindowLimiter{
		windows: make(map[string][]time.Time),
		config:  config,
		logger:  logger,
	}
}

// Admit checks whether a request by identity is allowed at time now.
func (l *SlidingWindowLimiter) Admit(ctx context.Context, identity string, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowStart := now.Add(-l.config.Window)

	// Keep only timestamps strictly inside the trailing window. Entries at
	// exactly windowStart have aged out.
	kept := l.windows[identity][:0]
	for _, t := range l.windows[identity] {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	l.windows[identity] = kept

	if len(kept) >= l.config.Limit {
		// The rejected attempt is not recorded: repeated rejections while
		// over-limit must not inflate the stored sequence.
		l.logger.Warn("rate limit exceeded", "identity", identity, "limit", l.config.Limit)
		return &ratelimit.ExceededError{Limit: l.config.Limit, Window: l.config.Window}
	}

	l.windows[identity] = append(kept, now)
	return nil
}

// Size returns the number of tracked identities.
// Useful for testing and monitoring memory usage.
func (l *SlidingWindowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Compile-time interface verification.
var _ ratelimit.Limiter = (*SlidingWindowLimiter)(nil)
