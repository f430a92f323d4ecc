package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("succeeds on a later attempt", func(t *testing.T) {
		attempts := 0
		err := WithRetry(ctx, func() error {
			attempts++
			if attempts < 3 {
				return fmt.Errorf("%w: flaky upstream", ErrNetworkFailure)
			}
			return nil
		}, opts)

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("non-retryable errors return immediately", func(t *testing.T) {
		attempts := 0
		err := WithRetry(ctx, func() error {
			attempts++
			return ErrValidation
		}, opts)

		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, 1, attempts)
	})

	t.Run("exhausted attempts wrap ErrMaxRetries", func(t *testing.T) {
		err := WithRetry(ctx, func() error {
			return &RetryableError{Err: errors.New("still down"), Retryable: true}
		}, opts)

		assert.ErrorIs(t, err, ErrMaxRetries)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := WithRetry(cancelled, func() error {
			return fmt.Errorf("%w: unreachable", ErrNetworkFailure)
		}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Minute})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("wrap: %w", ErrNetworkFailure)))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(ErrValidation))
	assert.False(t, IsRetryable(nil))
}

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewUserError("could not save your expense", inner)

	assert.Equal(t, "could not save your expense: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "could not save your expense", userErr.UserMessage)
}
