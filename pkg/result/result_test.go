package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		res        Result[Empty]
		wantStatus Status
		wantErr    bool
		retryable  bool
	}{
		{"success", Done(), Success, false, false},
		{"not found", NotFoundf[Empty]("a.txt"), NotFound, true, false},
		{"permission denied", Denied[Empty]("a.txt"), PermissionDenied, true, false},
		{"connection failed", ConnFailed[Empty]("dial tcp: refused", nil), ConnectionFailed, true, true},
		{"unimplemented", Unsupported[Empty]("move"), Unimplemented, true, false},
		{"cancelled", Aborted[Empty](), Cancelled, true, false},
		{"generic error", Failed[Empty]("backend_fault", "boom"), Error, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.res.Status)
			assert.Equal(t, tt.wantStatus == Success, tt.res.OK())
			assert.Equal(t, tt.retryable, tt.res.Retryable())

			// Exactly one of data/error is present.
			if tt.wantErr {
				assert.NotNil(t, tt.res.Err)
			} else {
				assert.Nil(t, tt.res.Err)
			}
		})
	}
}

func TestOkCarriesData(t *testing.T) {
	r := Ok([]string{"a", "b"})
	assert.True(t, r.OK())
	assert.Equal(t, []string{"a", "b"}, r.Data)
	assert.Nil(t, r.Err)
}

func TestRetryableFlagOnGenericError(t *testing.T) {
	r := Failed[Empty]("throttled", "slow down")
	assert.False(t, r.Retryable())

	r.Err.Retryable = true
	assert.True(t, r.Retryable())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	r := Wrap[Empty]("write_failed", cause)

	assert.Equal(t, Error, r.Status)
	assert.ErrorIs(t, r.Err, cause)
	assert.Contains(t, r.Err.Error(), "write_failed")
}

func TestFailConvertsPayloadType(t *testing.T) {
	r := NotFoundf[string]("missing.txt")
	converted := Fail[string, int](r)

	assert.Equal(t, NotFound, converted.Status)
	assert.Same(t, r.Err, converted.Err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "unimplemented", Unimplemented.String())
	assert.Equal(t, "unknown", Status(99).String())
}
