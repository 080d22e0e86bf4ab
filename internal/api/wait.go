package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrTimeout matches every *TimeoutError.
var ErrTimeout = errors.New("timed out")

// TimeoutError is returned by WaitUntil when the deadline passes before an
// attempt succeeds. Last is the error of the final attempt, if any ran.
type TimeoutError struct {
	Deadline time.Duration
	Attempts int
	Last     error
}

func (e *TimeoutError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("timed out after %s (%d attempts): %v", e.Deadline, e.Attempts, e.Last)
	}
	return fmt.Sprintf("timed out after %s (%d attempts)", e.Deadline, e.Attempts)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// WaitUntil runs attempt until it returns nil, at most once per interval,
// and gives up once deadline has elapsed. The first attempt runs
// immediately. Each attempt's context expires with the overall deadline.
func WaitUntil(attempt func(ctx context.Context) error, interval, deadline time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	timeout := &TimeoutError{Deadline: deadline}
	for {
		// Wait fails early when the next slot lies past the deadline.
		if err := limiter.Wait(ctx); err != nil {
			return timeout
		}
		timeout.Attempts++
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		timeout.Last = err
	}
}
