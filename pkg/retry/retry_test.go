package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edfm/edfm/pkg/result"
)

// fastPolicy keeps test runs short.
func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, Multiplier: 2.0}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	res, attempts := Do(context.Background(), fastPolicy(3), func(ctx context.Context) result.Result[result.Empty] {
		calls++
		return result.Done()
	})

	assert.True(t, res.OK())
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesConnectionFailure(t *testing.T) {
	calls := 0
	res, attempts := Do(context.Background(), fastPolicy(4), func(ctx context.Context) result.Result[result.Empty] {
		calls++
		if calls < 3 {
			return result.ConnFailed[result.Empty]("connection reset", nil)
		}
		return result.Done()
	})

	assert.True(t, res.OK())
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	res, attempts := Do(context.Background(), fastPolicy(3), func(ctx context.Context) result.Result[result.Empty] {
		calls++
		return result.ConnFailed[result.Empty]("still down", nil)
	})

	assert.Equal(t, result.ConnectionFailed, res.Status)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestDoNeverRetriesTerminalStatuses(t *testing.T) {
	tests := []struct {
		name string
		res  result.Result[result.Empty]
	}{
		{"not found", result.NotFoundf[result.Empty]("x")},
		{"permission denied", result.Denied[result.Empty]("x")},
		{"unimplemented", result.Unsupported[result.Empty]("move")},
		{"cancelled", result.Aborted[result.Empty]()},
		{"plain error", result.Failed[result.Empty]("fault", "boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			res, attempts := Do(context.Background(), fastPolicy(5), func(ctx context.Context) result.Result[result.Empty] {
				calls++
				return tt.res
			})

			assert.Equal(t, tt.res.Status, res.Status)
			assert.Equal(t, 1, attempts)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestDoRetriesExplicitlyRetryableError(t *testing.T) {
	calls := 0
	res, _ := Do(context.Background(), fastPolicy(2), func(ctx context.Context) result.Result[result.Empty] {
		calls++
		r := result.Failed[result.Empty]("throttled", "slow down")
		r.Err.Retryable = true
		return r
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, result.Error, res.Status)
}

func TestDoHonorsCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{MaxAttempts: 5, BaseDelay: time.Hour, Multiplier: 2.0}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res, _ := Do(ctx, policy, func(ctx context.Context) result.Result[result.Empty] {
		return result.ConnFailed[result.Empty]("down", nil)
	})

	assert.Equal(t, result.Cancelled, res.Status)
}

func TestDoCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	res, attempts := Do(ctx, fastPolicy(3), func(ctx context.Context) result.Result[result.Empty] {
		calls++
		return result.Done()
	})

	assert.Equal(t, result.Cancelled, res.Status)
	assert.Zero(t, attempts)
	assert.Zero(t, calls)
}

func TestDoZeroAttemptsBehavesAsOne(t *testing.T) {
	calls := 0
	res, attempts := Do(context.Background(), Policy{}, func(ctx context.Context) result.Result[result.Empty] {
		calls++
		return result.Done()
	})

	assert.True(t, res.OK())
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}
