package retrypolicy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/contentforge/internal/llm"
)

func fastPolicy(maxAttempts int) Policy {
	return Policy{MaxAttempts: maxAttempts, RateLimitDelay: time.Millisecond, BaseDelay: time.Millisecond}
}

func TestExecute_SucceedsFirstTry(t *testing.T) {
	result, err := Execute(context.Background(), fastPolicy(3), false, func(attempt int) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempts)
}

func TestExecute_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	result, err := Execute(context.Background(), fastPolicy(3), false, func(attempt int) error {
		calls++
		if calls < 2 {
			return &llm.Error{Kind: llm.ErrTransient, Reason: "boom"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 2, calls)
}

func TestExecute_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	_, err := Execute(context.Background(), fastPolicy(3), false, func(attempt int) error {
		calls++
		return &llm.Error{Kind: llm.ErrFatal, Reason: "nope"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_ExhaustsAllAttempts(t *testing.T) {
	calls := 0
	result, err := Execute(context.Background(), fastPolicy(3), true, func(attempt int) error {
		calls++
		return &llm.Error{Kind: llm.ErrTransient, Reason: "still failing"}
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, result.Attempts)
}

func TestExecute_UnrecognizedErrorTreatedAsRetryable(t *testing.T) {
	calls := 0
	_, err := Execute(context.Background(), fastPolicy(2), false, func(attempt int) error {
		calls++
		return errors.New("some storage error")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestExecute_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Execute(ctx, Policy{MaxAttempts: 3, RateLimitDelay: time.Minute, BaseDelay: time.Minute}, false, func(attempt int) error {
		calls++
		if calls == 1 {
			cancel()
		}
		return &llm.Error{Kind: llm.ErrTransient}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
