package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterBlocksAfterLimit(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < LoginAttemptLimit; i++ {
		blocked, errCheck := limiter.Blocked(ctx, "login:1.2.3.4", LoginAttemptLimit, LoginAttemptWindow, now)
		if errCheck != nil {
			t.Fatalf("Blocked returned error: %v", errCheck)
		}
		if blocked {
			t.Fatalf("blocked after %d failures", i)
		}
		if _, errFail := limiter.Fail(ctx, "login:1.2.3.4", LoginAttemptWindow, now); errFail != nil {
			t.Fatalf("Fail returned error: %v", errFail)
		}
	}

	blocked, errCheck := limiter.Blocked(ctx, "login:1.2.3.4", LoginAttemptLimit, LoginAttemptWindow, now)
	if errCheck != nil {
		t.Fatalf("Blocked returned error: %v", errCheck)
	}
	if !blocked {
		t.Fatalf("expected block after %d failures", LoginAttemptLimit)
	}

	blocked, _ = limiter.Blocked(ctx, "login:5.6.7.8", LoginAttemptLimit, LoginAttemptWindow, now)
	if blocked {
		t.Fatal("unrelated key should not be blocked")
	}
}

func TestMemoryLimiterWindowExpiry(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < LoginAttemptLimit; i++ {
		_, _ = limiter.Fail(ctx, "login:1.2.3.4", LoginAttemptWindow, now)
	}

	later := now.Add(LoginAttemptWindow + time.Second)
	blocked, errCheck := limiter.Blocked(ctx, "login:1.2.3.4", LoginAttemptLimit, LoginAttemptWindow, later)
	if errCheck != nil {
		t.Fatalf("Blocked returned error: %v", errCheck)
	}
	if blocked {
		t.Fatal("block should lapse after the window passes")
	}

	count, errFail := limiter.Fail(ctx, "login:1.2.3.4", LoginAttemptWindow, later)
	if errFail != nil {
		t.Fatalf("Fail returned error: %v", errFail)
	}
	if count != 1 {
		t.Fatalf("expected fresh window count 1, got %d", count)
	}
}

func TestMemoryLimiterReset(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < LoginAttemptLimit; i++ {
		_, _ = limiter.Fail(ctx, "login:1.2.3.4", LoginAttemptWindow, now)
	}
	if errReset := limiter.Reset(ctx, "login:1.2.3.4"); errReset != nil {
		t.Fatalf("Reset returned error: %v", errReset)
	}
	blocked, _ := limiter.Blocked(ctx, "login:1.2.3.4", LoginAttemptLimit, LoginAttemptWindow, now)
	if blocked {
		t.Fatal("reset should clear the counter")
	}
}

func TestLoginLimiterMemoryFallback(t *testing.T) {
	limiter := NewLoginLimiter(RedisSettings{}, func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}, nil)
	ctx := context.Background()

	for i := 0; i < LoginAttemptLimit; i++ {
		if limiter.Blocked(ctx, "1.2.3.4") {
			t.Fatalf("blocked after %d failures", i)
		}
		limiter.Fail(ctx, "1.2.3.4")
	}
	if !limiter.Blocked(ctx, "1.2.3.4") {
		t.Fatal("expected block after limit reached")
	}

	limiter.Reset(ctx, "1.2.3.4")
	if limiter.Blocked(ctx, "1.2.3.4") {
		t.Fatal("reset should unblock the IP")
	}
}
