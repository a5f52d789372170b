// Package resilience provides fault-tolerance wrappers for unreliable
// remote calls.
//
// Remote inference providers fail in bursts, rate-limit aggressively and
// exhibit highly variable latency. The patterns here keep those failures
// from cascading into the caller:
//
//   - Circuit Breaker: stops invoking a failing dependency for a
//     cool-down period after repeated failures.
//
//   - Retry: re-executes a failing operation with exponential backoff
//     and randomized jitter.
//
//   - Pool: bounds how many blocking calls run concurrently, with a
//     per-submission timeout.
//
//   - RateLimiter: token-bucket guard against provider rate limits.
//
//   - Timeout: caps the duration of a single call.
//
// Each pattern is an independent wrapper over func(context.Context)
// error; callers choose which to apply and nest them in any order. The
// Executor composes a standard stack for convenience.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    RecoveryTimeout:  time.Minute,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxRetries:    3,
//	    BaseDelay:     100 * time.Millisecond,
//	    MaxDelay:      5 * time.Second,
//	    BackoffFactor: 2.0,
//	    Jitter:        true,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(30*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return callProvider(ctx)
//	})
package resilience
