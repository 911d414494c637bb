package retrier

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnreachable = errors.New("server selection timeout")

// flakyPing fails until it has been called okAfter times.
func flakyPing(okAfter int, calls *int) func(context.Context) error {
	return func(context.Context) error {
		*calls++
		if *calls < okAfter {
			return errUnreachable
		}
		return nil
	}
}

func TestRetrier_Do(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		okAfter    int
		wantErr    bool
		wantCalls  int
		wantNotify []int
	}{
		{name: "reachable at once", maxRetries: 3, okAfter: 1, wantCalls: 1},
		{name: "reachable after two failures", maxRetries: 3, okAfter: 3, wantCalls: 3, wantNotify: []int{1, 2}},
		{name: "budget exhausted", maxRetries: 2, okAfter: 10, wantErr: true, wantCalls: 3, wantNotify: []int{1, 2}},
		{name: "no retries", maxRetries: 0, okAfter: 2, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var notified []int
			r := New(
				WithMaxRetries(tt.maxRetries),
				WithInitialInterval(time.Millisecond),
				WithOnRetry(func(attempt int, err error) {
					assert.ErrorIs(t, err, errUnreachable)
					notified = append(notified, attempt)
				}),
			)

			calls := 0
			err := r.Do(context.Background(), flakyPing(tt.okAfter, &calls))

			if tt.wantErr {
				assert.ErrorIs(t, err, errUnreachable)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantNotify, notified)
		})
	}
}

func TestRetrier_DoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(WithMaxRetries(5), WithInitialInterval(time.Hour))

	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := r.Do(ctx, flakyPing(10, &calls))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetrier_Backoff(t *testing.T) {
	r := New(WithInitialInterval(time.Second))

	for attempt, want := range map[int]time.Duration{
		1: time.Second,
		2: 2 * time.Second,
		4: 8 * time.Second,
		9: maxInterval,
	} {
		got := r.backoff(attempt)
		assert.InDelta(t, float64(want), float64(got), float64(want)*jitter, "attempt %d", attempt)
	}
}
