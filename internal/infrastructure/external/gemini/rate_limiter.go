package gemini

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER - Token Bucket
// ══════════════════════════════════════════════════════════════════════════════

// RateLimiter is a token bucket shared by every call of one Client.
// After a 429 the bucket is emptied and the refill rate drops until Reset.
type RateLimiter struct {
	mu sync.Mutex

	maxTokens   float64
	baseRate    float64 // tokens per second as configured
	refillRate  float64 // current tokens per second
	tokens      float64
	lastRefill  time.Time
	waitTimeout time.Duration
	blockedTill time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// RateLimiterConfig contains configuration for the rate limiter.
type RateLimiterConfig struct {
	// RequestsPerMinute is the sustained request rate.
	RequestsPerMinute int

	// Burst is the bucket size.
	Burst int

	// WaitTimeout bounds how long Allow blocks for a token.
	WaitTimeout time.Duration
}

// DefaultRateLimiterConfig matches the free tier of the API.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 60,
		Burst:             5,
		WaitTimeout:       10 * time.Second,
	}
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 1
	}
	rate := float64(config.RequestsPerMinute) / 60

	rl := &RateLimiter{
		maxTokens:   float64(config.Burst),
		baseRate:    rate,
		refillRate:  rate,
		tokens:      float64(config.Burst),
		waitTimeout: config.WaitTimeout,
		now:         time.Now,
		sleep:       sleepContext,
	}
	rl.lastRefill = rl.now()
	return rl
}

// RateLimitError is returned when no token became available in time.
// It matches shared.ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("gemini: rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Millisecond))
}

func (e *RateLimitError) Unwrap() error { return shared.ErrRateLimited }

// Allow blocks until a token is available, ctx is done or the wait
// would exceed WaitTimeout.
func (rl *RateLimiter) Allow(ctx context.Context) error {
	deadline := rl.now().Add(rl.waitTimeout)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := rl.tryAcquire()
		if ok {
			return nil
		}
		if rl.now().Add(wait).After(deadline) {
			return &RateLimitError{RetryAfter: wait}
		}
		if err := rl.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// TryAllow takes a token without blocking.
func (rl *RateLimiter) TryAllow() bool {
	_, ok := rl.tryAcquire()
	return ok
}

func (rl *RateLimiter) tryAcquire() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.refill(now)

	if now.Before(rl.blockedTill) {
		return rl.blockedTill.Sub(now), false
	}
	if rl.tokens < 1 {
		need := 1 - rl.tokens
		return time.Duration(need / rl.refillRate * float64(time.Second)), false
	}
	rl.tokens--
	return 0, true
}

// refill must be called with the lock held.
func (rl *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(rl.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// RecordRateLimitHit is called when the API answered 429.
// The bucket is emptied, nothing is allowed for retryAfter and the
// refill rate is cut by a fifth, never below a tenth of the configured rate.
func (rl *RateLimiter) RecordRateLimitHit(retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.refill(now)
	rl.tokens = 0
	if retryAfter > 0 {
		rl.blockedTill = now.Add(retryAfter)
	}
	rl.refillRate *= 0.8
	if floor := rl.baseRate / 10; rl.refillRate < floor {
		rl.refillRate = floor
	}
}

// Reset restores the configured rate and a full bucket.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = rl.maxTokens
	rl.refillRate = rl.baseRate
	rl.lastRefill = rl.now()
	rl.blockedTill = time.Time{}
}

// RateLimiterStatus is a point-in-time view of the bucket.
type RateLimiterStatus struct {
	AvailableTokens float64
	MaxTokens       float64
	RefillRate      float64
	BlockedUntil    time.Time
}

// Status returns the current state of the bucket.
func (rl *RateLimiter) Status() RateLimiterStatus {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill(rl.now())

	return RateLimiterStatus{
		AvailableTokens: rl.tokens,
		MaxTokens:       rl.maxTokens,
		RefillRate:      rl.refillRate,
		BlockedUntil:    rl.blockedTill,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
