// Package retry implements the linear backoff policy shared by the user
// download and update loops. A unit of work (one page, one user) gets a
// fresh attempt budget; what happens after the budget runs out is the
// caller's decision.
package retry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"scimrename/internal/errors"
)

// Defaults used by the CLI.
const (
	MaxRetries = 3
	BaseDelay  = 2 * time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy describes how often and how patiently a unit of work is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is multiplied by the number of failed attempts so far.
	BaseDelay time.Duration
	// Sleep defaults to a context-aware timer when nil.
	Sleep SleepFunc
}

// DefaultPolicy returns three attempts with 2s, then 4s between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: MaxRetries, BaseDelay: BaseDelay}
}

// Delay returns the wait before the given 1-based attempt. The first attempt
// never waits.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.BaseDelay * time.Duration(attempt-1)
}

// Do runs fn until it succeeds or the attempt budget is spent. Every failure
// is logged at error level. On exhaustion Do returns an *errors.AbortedError
// wrapping the last failure; a cancelled context returns ctx.Err().
func (p Policy) Do(ctx context.Context, unit string, logger logrus.FieldLogger, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			logger.Errorf("Retrying (%d/%d)", attempt, attempts)
			if err := p.sleep(ctx, p.Delay(attempt)); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		logger.WithError(lastErr).WithField("attempt", attempt).Errorf("Request for %s failed", unit)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return errors.NewAbortedError(unit, attempts, lastErr)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
