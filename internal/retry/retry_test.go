package retry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLinearBackoff(t *testing.T) {
	backoff := LinearBackoff(5 * time.Second)

	assert.Equal(t, 5*time.Second, backoff(1))
	assert.Equal(t, 10*time.Second, backoff(2))
	assert.Equal(t, 15*time.Second, backoff(3))
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	backoffCalls := 0
	policy := Policy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			backoffCalls++
			return 0
		},
	}

	err := policy.Do(context.Background(), discardLogger(), "fetch_series", func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, backoffCalls)
}

func TestDo_RecoversAfterFailures(t *testing.T) {
	calls := 0
	var backoffAttempts []int
	policy := Policy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			backoffAttempts = append(backoffAttempts, attempt)
			return 0
		},
	}

	err := policy.Do(context.Background(), discardLogger(), "fetch_series", func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, backoffAttempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	errFinal := errors.New("still failing")
	calls := 0
	backoffCalls := 0
	policy := Policy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			backoffCalls++
			return 0
		},
	}

	err := policy.Do(context.Background(), discardLogger(), "send_message", func() error {
		calls++
		return errFinal
	})

	require.Error(t, err)
	// The final attempt's error comes back unwrapped.
	assert.Equal(t, errFinal, err)
	assert.ErrorIs(t, err, errFinal)
	assert.Equal(t, 3, calls)
	// Two sleeps for three attempts, never one after the final failure.
	assert.Equal(t, 2, backoffCalls)
}

func TestDo_LogsWarningPerFailedAttempt(t *testing.T) {
	logger, hook := test.NewNullLogger()
	policy := Policy{MaxAttempts: 3, Backoff: func(int) time.Duration { return 0 }}

	err := policy.Do(context.Background(), logger, "send_message", func() error {
		return errors.New("boom")
	})
	require.Error(t, err)

	var warnAttempts []int
	errorLines := 0
	for _, entry := range hook.AllEntries() {
		switch entry.Level {
		case logrus.WarnLevel:
			attempt, ok := entry.Data["attempt"].(int)
			require.True(t, ok)
			warnAttempts = append(warnAttempts, attempt)
			assert.Equal(t, "send_message", entry.Data["operation"])
		case logrus.ErrorLevel:
			errorLines++
			assert.Equal(t, 3, entry.Data["attempts"])
		}
	}

	assert.Equal(t, []int{1, 2, 3}, warnAttempts)
	assert.Equal(t, 1, errorLines)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	policy := Policy{MaxAttempts: 3, Backoff: LinearBackoff(time.Millisecond)}

	err := policy.Do(ctx, discardLogger(), "fetch_series", func() error {
		calls++
		return errors.New("unreachable")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDo_ClampsMaxAttempts(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 0}

	err := policy.Do(context.Background(), discardLogger(), "fetch_series", func() error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NilBackoffDoesNotPanic(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 2}

	err := policy.Do(context.Background(), discardLogger(), "fetch_series", func() error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}
