package ratelimit

import (
	"context"
	"time"
)

// AttemptLimiter tracks failed attempts per key inside a fixed window.
type AttemptLimiter interface {
	// Blocked reports whether the key has reached the attempt limit.
	Blocked(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error)
	// Fail records one failed attempt and returns the new count.
	Fail(ctx context.Context, key string, window time.Duration, now time.Time) (int, error)
	// Reset clears the counter for the key.
	Reset(ctx context.Context, key string) error
}

// RedisSettings configures the optional shared Redis backend. Empty Addr
// disables Redis and the manager stays on process memory.
type RedisSettings struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}
