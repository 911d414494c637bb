// Package retrier repeats an operation with exponential backoff until it succeeds,
// the retry budget runs out or the context is cancelled.
package retrier

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	defaultInitialInterval = time.Second
	defaultMaxRetries      = 5

	maxInterval = 30 * time.Second
	jitter      = 0.1
)

// Retrier doubles the wait after every failed attempt, capped at 30s, with ±10% jitter.
type Retrier struct {
	initialInterval time.Duration
	maxRetries      int
	onRetry         func(attempt int, err error)
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithInitialInterval sets the wait before the first retry.
func WithInitialInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.initialInterval = d
	}
}

// WithMaxRetries sets how many times a failed call is repeated. Zero means a single attempt.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) {
		r.maxRetries = n
	}
}

// WithOnRetry registers a hook called with the failed attempt number and its error before each backoff.
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(r *Retrier) {
		r.onRetry = fn
	}
}

// New creates a Retrier with 5 retries starting at one second.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		initialInterval: defaultInitialInterval,
		maxRetries:      defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do calls fn until it returns nil and returns the last error otherwise.
// Cancellation during a backoff returns ctx.Err().
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	for attempt := 1; err != nil && attempt <= r.maxRetries; attempt++ {
		if r.onRetry != nil {
			r.onRetry(attempt, err)
		}

		timer := time.NewTimer(r.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = fn(ctx)
	}
	return err
}

// backoff returns the wait before retry number attempt (1-based).
func (r *Retrier) backoff(attempt int) time.Duration {
	d := r.initialInterval
	for i := 1; i < attempt && d < maxInterval; i++ {
		d *= 2
	}
	if d > maxInterval {
		d = maxInterval
	}

	d += time.Duration((rand.Float64()*2 - 1) * jitter * float64(d))
	if d < 0 {
		return 0
	}
	return d
}
