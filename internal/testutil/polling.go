// Package testutil provides a virtual-clock scheduler and polling helpers
// for tests of timer-driven playback.
package testutil

import (
	"context"
	"fmt"
	"time"
)

// Poll repeatedly checks a condition until it becomes true or timeout
// expires. Use it for code running on the wall clock; timer-driven code
// under test should use ManualScheduler instead.
func Poll(ctx context.Context, condition func() bool, timeout time.Duration, interval time.Duration) error {
	_, err := WaitForState(ctx, condition, func(ok bool) bool { return ok }, timeout, interval)
	return err
}

// WaitForState waits until the state getter returns a value that satisfies
// the predicate function, or timeout expires. On failure it returns the
// zero value.
//
// Example usage:
//
//	cursor, err := WaitForState(ctx, engine.CurrentIndex,
//		func(i int) bool { return i == engine.StepCount()-1 },
//		5*time.Second,
//		10*time.Millisecond)
func WaitForState[T any](ctx context.Context, getter func() T, predicate func(T) bool, timeout time.Duration, interval time.Duration) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)
	for {
		state := getter()
		if predicate(state) {
			return state, nil
		}

		if !time.Now().Before(deadline) {
			return zero, fmt.Errorf("timeout waiting for target state (type %T, threshold: %v)", zero, timeout)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(interval):
		}
	}
}
