// Package retry wraps backend calls with bounded exponential backoff.
//
// Only transient outcomes are re-attempted: ConnectionFailed results and
// generic errors the backend explicitly marked retryable. NotFound,
// PermissionDenied, Unimplemented and Cancelled are terminal by contract
// and return immediately.
package retry

import (
	"context"
	"time"

	"github.com/edfm/edfm/pkg/result"
)

// Policy parameterizes the retry loop.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 behave as 1.
	MaxAttempts int

	// BaseDelay is the wait before the first re-attempt.
	BaseDelay time.Duration

	// Multiplier scales the delay after each failed attempt. Values
	// below 1 behave as 1 (constant backoff).
	Multiplier float64

	// MaxDelay caps the backoff. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultPolicy matches the most conservative backend profile: three
// attempts, half-second base, doubling per attempt, capped at ten
// seconds.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs op under the policy and returns its final result along with
// the number of attempts made.
//
// The context is checked before every attempt and honored while backing
// off; cancellation resolves to a Cancelled result without issuing
// further calls.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) result.Result[T]) (result.Result[T], int) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	delay := p.BaseDelay
	var last result.Result[T]

	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return result.Aborted[T](), attempt - 1
		}

		last = op(ctx)
		if last.OK() || !last.Retryable() || attempt == attempts {
			return last, attempt
		}

		select {
		case <-ctx.Done():
			return result.Aborted[T](), attempt
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return last, attempts
}
