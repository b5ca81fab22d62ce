// Package retry provides bounded exponential-backoff retry for transient
// store and embedding-service errors.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
)

// Config controls the retry behaviour
type Config struct {
	// MaxAttempts is the total number of attempts including the first.
	// Zero or negative values are treated as 1.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt. Subsequent delays
	// double up to MaxDelay.
	InitialDelay time.Duration

	// MaxDelay caps the per-attempt wait
	MaxDelay time.Duration

	// ShouldRetry optionally classifies errors as retryable. When nil, all
	// non-nil errors are retried.
	ShouldRetry func(err error) bool
}

// DefaultConfig suits short-lived store calls
var DefaultConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

// Do calls fn up to cfg.MaxAttempts times with exponential backoff between
// attempts. It stops early when ctx is cancelled or fn succeeds, and
// returns the error of the last attempt.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(error) bool { return true }
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(lastErr, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !shouldRetry(lastErr) {
			return lastErr
		}

		if attempt < cfg.MaxAttempts {
			logging.From(ctx).Debug("retrying after failed attempt",
				"attempt", attempt,
				"max", cfg.MaxAttempts,
				"delay", delay.String(),
				"error", lastErr.Error())

			select {
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			case <-time.After(delay):
			}

			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	return lastErr
}
