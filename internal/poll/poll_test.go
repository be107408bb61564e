package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns the given statuses on successive calls and counts
// the calls; the last status repeats if the script runs out.
func scripted(calls *int, statuses ...string) Func {
	return func(ctx context.Context) (string, error) {
		i := *calls
		*calls++
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		return statuses[i], nil
	}
}

func TestWait_SucceedsOnFirstMatch(t *testing.T) {
	var calls int
	w := Waiter{
		Fetch:    scripted(&calls, "creating", "creating", "created"),
		Target:   []string{"created"},
		Interval: time.Millisecond,
	}

	status, err := w.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "created", status)
	assert.Equal(t, 3, calls, "polling must stop on first match")
}

func TestWait_TimeoutAfterMaxAttempts(t *testing.T) {
	var calls int
	w := Waiter{
		Fetch:       scripted(&calls, "installing"),
		Target:      []string{"on"},
		Interval:    time.Millisecond,
		MaxAttempts: 3,
	}

	status, err := w.Wait(context.Background())
	assert.Equal(t, 3, calls, "budget of 3 attempts means exactly 3 calls")
	assert.Equal(t, "installing", status)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "installing", te.LastStatus)
	assert.Equal(t, 3, te.Attempts)
}

func TestWait_MultipleTargets(t *testing.T) {
	var calls int
	w := Waiter{
		Fetch:    scripted(&calls, "transitioning", "off"),
		Target:   []string{"on", "off"},
		Interval: time.Millisecond,
	}

	status, err := w.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "off", status)
}

func TestWait_FetchErrorFailsImmediately(t *testing.T) {
	boom := errors.New("connection refused")
	var calls int
	w := Waiter{
		Fetch: func(ctx context.Context) (string, error) {
			calls++
			if calls == 2 {
				return "", boom
			}
			return "creating", nil
		},
		Target:      []string{"created"},
		Interval:    time.Millisecond,
		MaxAttempts: 10,
	}

	_, err := w.Wait(context.Background())
	var ae *AttemptError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 2, ae.Attempt)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "no retry after a failed attempt")
}

func TestWait_MaxWaitTimesOut(t *testing.T) {
	var calls int
	w := Waiter{
		Fetch:    scripted(&calls, "creating"),
		Target:   []string{"created"},
		Interval: 5 * time.Millisecond,
		MaxWait:  20 * time.Millisecond,
	}

	_, err := w.Wait(context.Background())
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "creating", te.LastStatus)
}

func TestWait_ContextCancelAbortsBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	w := Waiter{
		Fetch: func(ctx context.Context) (string, error) {
			calls++
			if calls == 1 {
				cancel()
			}
			return "creating", nil
		},
		Target:   []string{"created"},
		Interval: time.Minute,
	}

	_, err := w.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWait_RequiresFetchAndTargets(t *testing.T) {
	_, err := Waiter{Target: []string{"on"}}.Wait(context.Background())
	assert.Error(t, err)

	_, err = Waiter{Fetch: scripted(new(int), "on")}.Wait(context.Background())
	assert.Error(t, err)
}

func TestWaitFor(t *testing.T) {
	var calls int
	status, err := WaitFor(context.Background(), scripted(&calls, "off", "on"), "on", time.Millisecond, 0)
	require.NoError(t, err)
	assert.Equal(t, "on", status)
	assert.Equal(t, 2, calls)
}
