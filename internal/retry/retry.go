package retry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// BackoffFunc returns how long to wait after the given failed attempt.
// Attempts are numbered from 1.
type BackoffFunc func(attempt int) time.Duration

// LinearBackoff returns a BackoffFunc that waits base after the first failed
// attempt, twice base after the second, and so on.
func LinearBackoff(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Policy defines retry behavior for failed operations. MaxAttempts counts
// the first try, so a Policy with MaxAttempts 3 sleeps at most twice.
type Policy struct {
	MaxAttempts int
	Backoff     BackoffFunc
}

// Do executes operation up to p.MaxAttempts times, sleeping per p.Backoff
// between attempts. The error of the final attempt is returned unmodified so
// callers can inspect it. A MaxAttempts below 1 is treated as 1.
func (p Policy) Do(ctx context.Context, logger logrus.FieldLogger, operationName string, operation func() error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			if attempt > 1 {
				logger.WithFields(logrus.Fields{
					"operation": operationName,
					"attempts":  attempt,
					"duration":  time.Since(start),
				}).Info("Operation recovered after retry")
			}
			return nil
		}

		lastErr = err

		fields := logrus.Fields{
			"operation": operationName,
			"attempt":   attempt,
			"error":     err.Error(),
		}

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			logger.WithFields(fields).Warn("Operation failed")
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		fields["delay"] = delay
		logger.WithFields(fields).Warn("Operation failed, retrying")

		// Wait before retry
		time.Sleep(delay)
	}

	// All attempts failed
	logger.WithFields(logrus.Fields{
		"operation": operationName,
		"attempts":  maxAttempts,
		"duration":  time.Since(start),
		"error":     lastErr.Error(),
	}).Error("Operation failed after all retries")

	return lastErr
}
