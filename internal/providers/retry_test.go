package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvlabs/deepwatch/internal/errs"
)

func TestDo_ReturnsNilOnFirstSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NonRetryableErrorReturnsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	err := Do(context.Background(), func() error {
		calls++
		return sentinel
	})

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesRetryableNetworkErrorUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &errs.NetworkError{StatusCode: 503, Err: errors.New("unavailable")}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxRetriesAndReturnsLastError(t *testing.T) {
	calls := 0
	lastErr := &errs.NetworkError{StatusCode: 500, Err: errors.New("still down")}
	err := Do(context.Background(), func() error {
		calls++
		return lastErr
	})

	assert.Equal(t, lastErr, err)
	assert.Equal(t, maxRetries+1, calls)
}

func TestDo_ContextCancelledDuringBackoffReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, func() error {
		calls++
		return &errs.NetworkError{StatusCode: 503, Err: errors.New("unavailable")}
	})

	assert.Equal(t, context.Canceled, err)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestBackoffDelay_GrowsExponentiallyWithJitterBounds(t *testing.T) {
	for attempt := 0; attempt < 3; attempt++ {
		base := float64(baseDelay) * float64(uint(1)<<uint(attempt))
		low := time.Duration(base * 0.8)
		high := time.Duration(base * 1.2)

		for i := 0; i < 20; i++ {
			d := backoffDelay(attempt)
			assert.GreaterOrEqual(t, d, low)
			assert.LessOrEqual(t, d, high)
		}
	}
}
