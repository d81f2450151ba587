package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/service"
)

// IsRetryable reports whether err is transient: a rate limit, a deadline,
// or a RetryableError flagged as such.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryable *RetryableError
	return errors.As(err, &retryable) && retryable.Retryable
}

// backoff tracks the wait between attempts.
type backoff struct {
	opts  service.RetryOptions
	delay time.Duration
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2
	}
	return &backoff{opts: opts, delay: opts.InitialDelay}
}

// next returns the wait before the following attempt. Rate limits wait the
// maximum delay straight away.
func (b *backoff) next(err error) time.Duration {
	wait := b.delay
	if errors.Is(err, ErrRateLimit) {
		wait = b.opts.MaxDelay
	}
	b.delay = min(time.Duration(float64(wait)*b.opts.Multiplier), b.opts.MaxDelay)
	return wait
}

// WithRetry runs operation until it succeeds, fails permanently, or runs out
// of attempts. Only errors for which IsRetryable reports true are repeated.
// Remote ledger sources and destinations use it; the categorization engine
// does not.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)

	for attempt := 1; ; attempt++ {
		err := operation()
		switch {
		case err == nil:
			return nil
		case !IsRetryable(err):
			return err
		case attempt >= b.opts.MaxAttempts:
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := b.next(err)
		slog.Warn("Remote call failed, retrying",
			"attempt", attempt,
			"max_attempts", b.opts.MaxAttempts,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
