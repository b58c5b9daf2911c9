package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrier_Execute(t *testing.T) {
	t.Run("returns nil when the operation succeeds immediately", func(t *testing.T) {
		r := New(WithAttempts(3), WithDelay(time.Millisecond))

		calls := 0
		err := r.Execute(t.Context(), func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until the operation succeeds", func(t *testing.T) {
		r := New(WithAttempts(5), WithDelay(time.Millisecond), WithMaxDelay(5*time.Millisecond))

		calls := 0
		err := r.Execute(t.Context(), func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns the last error after exhausting all attempts", func(t *testing.T) {
		r := New(WithAttempts(3), WithDelay(time.Millisecond), WithMaxDelay(5*time.Millisecond))

		lastErr := errors.New("still failing")
		calls := 0
		err := r.Execute(t.Context(), func() error {
			calls++
			return lastErr
		})

		assert.ErrorIs(t, err, lastErr)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops retrying when the context is cancelled", func(t *testing.T) {
		r := New(WithAttempts(100), WithDelay(10*time.Millisecond))

		ctx, cancel := context.WithCancel(t.Context())

		calls := 0
		err := r.Execute(ctx, func() error {
			calls++
			cancel()
			return errors.New("failing")
		})

		require.Error(t, err)
		assert.Less(t, calls, 100)
	})
}
