package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// PoolConfig configures the connection pool.
type PoolConfig struct {
	// MaxConnections is the number of calls allowed to run at once.
	// Additional submissions queue for a free slot.
	// Default: 10
	MaxConnections int

	// ExecutionTimeout bounds one submission end to end: queue wait plus
	// execution. An overrun fails with ErrPoolTimeout.
	// Default: 30 seconds
	ExecutionTimeout time.Duration
}

// Pool bounds concurrent execution of blocking remote calls across a
// fixed worker budget. It does not retry and does not reinterpret the
// operation's errors.
type Pool struct {
	config PoolConfig
	sem    *semaphore.Weighted

	mu        sync.Mutex
	active    int
	maxActive int
	timeouts  int64
}

// NewPool creates a new connection pool.
func NewPool(config PoolConfig) *Pool {
	// Apply defaults
	if config.MaxConnections <= 0 {
		config.MaxConnections = 10
	}
	if config.ExecutionTimeout <= 0 {
		config.ExecutionTimeout = 30 * time.Second
	}

	return &Pool{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConnections)),
	}
}

// Execute runs the operation on a pool slot, blocking the caller until
// it completes or the execution timeout elapses.
func (p *Pool) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.ExecutionTimeout)
	defer cancel()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			p.recordTimeout()
			return ErrPoolTimeout
		}
		return err
	}
	defer p.sem.Release(1)

	p.mu.Lock()
	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.recordTimeout()
			return ErrPoolTimeout
		}
		return ctx.Err()
	}
}

// Active returns the number of calls currently executing.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Metrics returns current pool statistics.
func (p *Pool) Metrics() PoolMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolMetrics{
		Active:         p.active,
		MaxActive:      p.maxActive,
		MaxConnections: p.config.MaxConnections,
		Timeouts:       p.timeouts,
	}
}

func (p *Pool) recordTimeout() {
	p.mu.Lock()
	p.timeouts++
	p.mu.Unlock()
}

// PoolMetrics contains pool statistics.
type PoolMetrics struct {
	Active         int
	MaxActive      int
	MaxConnections int
	Timeouts       int64
}
