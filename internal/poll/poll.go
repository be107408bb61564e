// Package poll blocks a command invocation until a watched resource
// reaches a desired status. It only ever observes state: every attempt
// is a read, never a mutation.
package poll

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultInterval is the pause between status checks.
const DefaultInterval = 5 * time.Second

// Func retrieves the current status of the watched resource.
type Func func(ctx context.Context) (string, error)

// errNotReady drives the retry loop while the status has not matched.
var errNotReady = errors.New("status not reached")

// TimeoutError is returned when the attempt or time budget runs out
// before the resource reaches a target status.
type TimeoutError struct {
	Target     []string
	LastStatus string
	Attempts   int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for status %v after %d attempts, last status %q",
		e.Target, e.Attempts, e.LastStatus)
}

// AttemptError wraps a transport or API failure observed during a poll
// attempt. Poll attempts are not retried after such failures.
type AttemptError struct {
	Attempt int
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("poll attempt %d: %v", e.Attempt, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// Waiter polls a resource's status until it matches one of Target.
//
// The loop is Pending -> Polling -> {Succeeded | TimedOut | Failed}:
// fetch, compare, sleep, repeat. Each attempt stands on its own; a
// fetch failure fails the wait.
type Waiter struct {
	// Fetch retrieves the current status.
	Fetch Func

	// Target is the set of statuses that complete the wait. Matching
	// is exact string comparison.
	Target []string

	// Interval between attempts. DefaultInterval when zero.
	Interval time.Duration

	// MaxAttempts bounds the number of fetches. Zero means no attempt
	// limit (MaxWait or the context must bound the loop instead).
	MaxAttempts int

	// MaxWait bounds total elapsed time. Zero means no time limit.
	MaxWait time.Duration
}

// Wait runs the poll loop and returns the matched status. It returns a
// *TimeoutError when the budget is exhausted, an *AttemptError when a
// fetch fails, or the context error on cancellation between attempts.
func (w Waiter) Wait(ctx context.Context) (string, error) {
	if w.Fetch == nil {
		return "", errors.New("poll: no fetch function")
	}
	if len(w.Target) == 0 {
		return "", errors.New("poll: no target statuses")
	}

	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	if w.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.MaxWait)
		defer cancel()
	}

	var (
		last     string
		attempts int
	)
	op := func() error {
		attempts++
		status, err := w.Fetch(ctx)
		if err != nil {
			return backoff.Permanent(&AttemptError{Attempt: attempts, Err: err})
		}
		last = status
		if slices.Contains(w.Target, status) {
			return nil
		}
		return errNotReady
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(interval)
	if w.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(w.MaxAttempts-1))
	}
	b = backoff.WithContext(b, ctx)

	err := backoff.Retry(op, b)
	switch {
	case err == nil:
		return last, nil
	case errors.Is(err, errNotReady):
		return last, &TimeoutError{Target: w.Target, LastStatus: last, Attempts: attempts}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Deadline from MaxWait reads as a timeout; an interrupt
		// propagates as the context error.
		if w.MaxWait > 0 && errors.Is(err, context.DeadlineExceeded) {
			return last, &TimeoutError{Target: w.Target, LastStatus: last, Attempts: attempts}
		}
		return last, err
	default:
		return last, err
	}
}

// WaitFor is a convenience wrapper for the common single-target case.
func WaitFor(ctx context.Context, fetch Func, target string, interval time.Duration, maxWait time.Duration) (string, error) {
	return Waiter{
		Fetch:    fetch,
		Target:   []string{target},
		Interval: interval,
		MaxWait:  maxWait,
	}.Wait(ctx)
}
