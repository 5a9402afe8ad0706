package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fast keeps the backoff short enough for unit tests.
func fast(opts ...Option) Retry {
	return New(append([]Option{WithDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}, opts...)...)
}

func TestRetry_Execute(t *testing.T) {
	t.Run("successful operation runs once", func(t *testing.T) {
		callCount := 0

		err := fast().Execute(t.Context(), func() error {
			callCount++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, callCount)
	})

	t.Run("retries until success", func(t *testing.T) {
		callCount := 0

		err := fast(WithAttempts(3)).Execute(t.Context(), func() error {
			callCount++
			if callCount < 2 {
				return errors.New("temporary error")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, callCount)
	})

	t.Run("returns the last error when attempts are exhausted", func(t *testing.T) {
		callCount := 0
		expectedErr := errors.New("persistent error")

		err := fast(WithAttempts(3)).Execute(t.Context(), func() error {
			callCount++
			return expectedErr
		})

		assert.ErrorIs(t, err, expectedErr)
		assert.Equal(t, 3, callCount)
	})

	t.Run("stops immediately when the predicate rejects the error", func(t *testing.T) {
		callCount := 0
		notFound := errors.New("not found")

		err := fast(
			WithAttempts(5),
			WithRetryIf(func(err error) bool { return !errors.Is(err, notFound) }),
		).Execute(t.Context(), func() error {
			callCount++
			return notFound
		})

		assert.ErrorIs(t, err, notFound)
		assert.Equal(t, 1, callCount)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := New(WithAttempts(5), WithDelay(time.Second)).Execute(ctx, func() error {
			return errors.New("temporary error")
		})

		assert.Error(t, err)
	})
}

func TestOptions(t *testing.T) {
	cfg := &config{}

	WithAttempts(7)(cfg)
	WithDelay(time.Second)(cfg)
	WithMaxDelay(3 * time.Second)(cfg)
	WithLastErrorOnly(false)(cfg)

	assert.Equal(t, uint(7), cfg.attempts)
	assert.Equal(t, time.Second, cfg.delay)
	assert.Equal(t, 3*time.Second, cfg.maxDelay)
	assert.False(t, cfg.lastErrOnly)
}
