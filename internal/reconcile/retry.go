package reconcile

import (
	"context"
	"time"
)

// Sleeper waits for d or until the context is canceled. Tests inject a
// recording sleeper so no real timers run.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the production Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retry runs op once per entry in delays, waiting delays[i] before attempt
// i+1. op returns done=true to stop early. Retry returns done=false after
// the schedule is exhausted, with the last op error if every attempt failed
// to complete. Context cancellation aborts immediately.
func Retry(ctx context.Context, delays []time.Duration, sleep Sleeper, op func(ctx context.Context, attempt int) (done bool, err error)) (bool, error) {
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for i, d := range delays {
		if err := sleep(ctx, d); err != nil {
			return false, err
		}
		done, err := op(ctx, i+1)
		if err != nil {
			lastErr = err
			continue
		}
		if done {
			return true, nil
		}
		lastErr = nil
	}
	return false, lastErr
}
