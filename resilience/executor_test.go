package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_Empty(t *testing.T) {
	e := NewExecutor()

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("Execute() = %v with %d calls, want nil and 1", err, calls)
	}
}

func TestExecutor_RetryInsideBreaker(t *testing.T) {
	// One executor call exhausts its retries before the breaker counts a
	// single failure, so the breaker sees call outcomes, not attempts.
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond})),
	)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return errUpstream
	})

	if !errors.Is(err, errUpstream) {
		t.Fatalf("Execute() error = %v, want %v", err, errUpstream)
	}
	if calls != 3 {
		t.Errorf("operation called %d times, want 3", calls)
	}
	if cb.FailureCount() != 1 {
		t.Errorf("breaker FailureCount() = %d, want 1 per executor call", cb.FailureCount())
	}
}

func TestExecutor_OpenBreakerSkipsRetry(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	_ = cb.Execute(context.Background(), failOp)

	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond})),
	)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if calls != 0 {
		t.Errorf("operation called %d times through an open circuit, want 0", calls)
	}
}

func TestExecutor_TimeoutInnermost(t *testing.T) {
	e := NewExecutor(
		WithRetry(NewRetry(RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond})),
		WithTimeout(10*time.Millisecond),
	)

	calls := 0
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})

	// Each attempt times out individually and the timeout error is
	// retryable, so the retry budget is spent.
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if calls != 2 {
		t.Errorf("operation called %d times, want 2", calls)
	}
}

func TestExecutor_RateLimiterOutermost(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	e := NewExecutor(
		WithRateLimiter(rl),
		WithRetry(NewRetry(RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond})),
	)
	ctx := context.Background()

	if err := e.Execute(ctx, okOp); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	calls := 0
	err := e.Execute(ctx, func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Execute() error = %v, want ErrRateLimitExceeded", err)
	}
	// The limiter rejects before any inner layer runs.
	if calls != 0 {
		t.Errorf("operation called %d times, want 0", calls)
	}
}

func TestExecutor_WithPool(t *testing.T) {
	e := NewExecutor(WithPool(NewPool(PoolConfig{MaxConnections: 1, ExecutionTimeout: time.Second})))

	if err := e.Execute(context.Background(), okOp); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestExecutor_FullStackSuccess(t *testing.T) {
	e := NewExecutor(
		WithRateLimiter(NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 10})),
		WithPool(NewPool(PoolConfig{MaxConnections: 2, ExecutionTimeout: time.Second})),
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{})),
		WithRetry(NewRetry(RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond})),
		WithTimeout(time.Second),
	)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return errUpstream
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("operation called %d times, want 2", calls)
	}
}
