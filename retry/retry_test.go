package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: 10 * time.Millisecond}
}

func TestWithBackoff_SuccessFirstTry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), policy(3), func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), policy(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	err := WithBackoff(context.Background(), policy(3), func(ctx context.Context) error {
		attempts++
		return expectedErr
	})
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestWithBackoff_PermanentStopsImmediately(t *testing.T) {
	attempts := 0
	fatal := errors.New("dimension mismatch")
	err := WithBackoff(context.Background(), policy(5), func(ctx context.Context) error {
		attempts++
		return Permanent(fatal)
	})
	assert.Equal(t, fatal, err)
	assert.False(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := WithBackoff(ctx, policy(10), func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "should return context.Canceled")
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestWithBackoff_AttemptTimeout(t *testing.T) {
	p := policy(2)
	p.AttemptTimeout = 20 * time.Millisecond

	attempts := 0
	err := WithBackoff(context.Background(), p, func(ctx context.Context) error {
		attempts++
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, attempts, "a timed out attempt is retried")
}

func TestWithBackoff_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		attempts := 0
		err := WithBackoff(context.Background(), policy(n), func(ctx context.Context) error {
			attempts++
			return nil
		})
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Equal(t, 0, attempts)
	}
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, p.delay(1))
	assert.Equal(t, 200*time.Millisecond, p.delay(2))
	assert.Equal(t, 300*time.Millisecond, p.delay(3))
	assert.Equal(t, 300*time.Millisecond, p.delay(8))
}
