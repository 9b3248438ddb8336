// Package ratelimiter paces backend dispatches with a token bucket.
//
// The plan executor acquires one token per backend call so a large plan
// cannot overwhelm a remote with a burst of concurrent operations.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps golang.org/x/time/rate with the small surface the
// executor needs: context-aware waiting and a non-blocking fast path.
//
// Thread safety: all methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter allowing requestsPerSecond sustained with the
// given burst capacity.
//
// requestsPerSecond = 0 disables limiting (effectively unlimited).
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		// Effectively unlimited; rate.Inf has edge cases with Wait.
		requestsPerSecond = 1_000_000_000
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow consumes a token if one is available, without waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
