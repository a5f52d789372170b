package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// Rate is the number of operations allowed per second.
	// Default: 10
	Rate float64

	// Burst is the maximum burst size.
	// Default: 5
	Burst int

	// WaitOnLimit waits for a token instead of failing immediately.
	// Default: false
	WaitOnLimit bool

	// MaxWait is the maximum time to wait for a token.
	// Default: 1 second
	MaxWait time.Duration
}

// RateLimiter is a token-bucket guard used in front of providers that
// enforce request quotas. Sending fewer requests is cheaper than
// classifying and retrying their rate-limit rejections.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether one operation may proceed now, consuming a
// token if so.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}

// Execute runs the operation under the rate limit. Without WaitOnLimit
// an exhausted bucket fails fast with ErrRateLimitExceeded; with it, the
// caller blocks up to MaxWait for a token.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.Allow() {
		return op(ctx)
	}

	if !rl.config.WaitOnLimit {
		return ErrRateLimitExceeded
	}

	deadline := time.NewTimer(rl.config.MaxWait)
	defer deadline.Stop()

	ticker := time.NewTicker(rl.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrRateLimitExceeded
		case <-ticker.C:
			if rl.Allow() {
				return op(ctx)
			}
		}
	}
}

// Tokens returns the current token count, for diagnostics.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	return rl.tokens
}

// refillLocked adds tokens accrued since the last refill, capped at the
// burst size. Must be called with the mutex held.
func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rl.tokens += elapsed * rl.config.Rate
	if max := float64(rl.config.Burst); rl.tokens > max {
		rl.tokens = max
	}
}

// pollInterval is how often a waiting caller re-checks the bucket:
// roughly the time one token takes to accrue, floored at 1ms.
func (rl *RateLimiter) pollInterval() time.Duration {
	interval := time.Duration(float64(time.Second) / rl.config.Rate)
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return interval
}
