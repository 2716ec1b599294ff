// Package wait provides the two delay primitives the whole program shares:
// a bounded condition poll and a chunked, cancellable sleep.
package wait

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout reports that a condition did not hold before its deadline.
var ErrTimeout = errors.New("condition not met before deadline")

// Until polls cond every interval until it reports done, the timeout passes,
// or ctx is cancelled. cond errors end the poll immediately.
func Until(ctx context.Context, timeout, interval time.Duration, cond func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		done, err := cond()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Sleep pauses for d, waking in short chunks so cancellation is prompt and a
// long pause still lines up with the wall clock at the end.
func Sleep(ctx context.Context, d time.Duration) error {
	const chunk = time.Second
	until := time.Now().Add(d)
	for {
		remaining := time.Until(until)
		if remaining <= 0 {
			return nil
		}
		if remaining > chunk {
			remaining = chunk
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(remaining):
		}
	}
}
