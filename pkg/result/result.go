// Package result defines the typed outcome model shared by every backend
// call and by the plan executor.
//
// Every operation against a backend resolves to a Result carrying exactly
// one of a success payload or an OpError, discriminated by a closed Status
// taxonomy. The taxonomy is deliberately small: callers branch on Status,
// never on error string contents.
//
// Retry eligibility is part of the model: only ConnectionFailed results and
// results whose OpError is explicitly marked retryable may be retried.
// Unimplemented signals a capability mismatch and must never be retried.
package result

import (
	"encoding/json"
	"fmt"
)

// Status is the closed set of outcomes a backend operation can resolve to.
type Status int

const (
	// Success means the operation completed and Data is valid.
	Success Status = iota

	// NotFound means the target path or object does not exist.
	NotFound

	// PermissionDenied means the backend refused the operation for the
	// current credentials.
	PermissionDenied

	// ConnectionFailed means the backend could not be reached or the
	// connection dropped mid-call. Always retryable.
	ConnectionFailed

	// Unimplemented means the backend does not support the operation.
	// This is a capability mismatch, not a transient fault.
	Unimplemented

	// Cancelled means the operation was abandoned before or during
	// execution due to a cancellation signal.
	Cancelled

	// Error is an opaque backend fault not covered by the other statuses.
	Error
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case PermissionDenied:
		return "permission_denied"
	case ConnectionFailed:
		return "connection_failed"
	case Unimplemented:
		return "unimplemented"
	case Cancelled:
		return "cancelled"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status by name so persisted reports stay
// readable and stable across reorderings of the constant block.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	parsed, ok := statusNames[name]
	if !ok {
		return fmt.Errorf("unknown status %q", name)
	}
	*s = parsed
	return nil
}

var statusNames = map[string]Status{
	"success":           Success,
	"not_found":         NotFound,
	"permission_denied": PermissionDenied,
	"connection_failed": ConnectionFailed,
	"unimplemented":     Unimplemented,
	"cancelled":         Cancelled,
	"error":             Error,
}

// OpError describes why an operation failed.
type OpError struct {
	// Code is a stable machine-readable identifier (e.g. "not_found").
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Retryable marks errors that a retry policy may re-attempt.
	Retryable bool `json:"retryable,omitempty"`

	// Cause is the underlying error, if any. Not serialized; Message
	// already embeds it for persisted reports.
	Cause error `json:"-"`
}

func (e *OpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Cause
}

// Empty is the payload type for operations that return no data.
type Empty struct{}

// Result is the outcome of a single backend operation.
//
// Exactly one of Data/Err is meaningful, determined by Status: Data is
// valid only for Success, Err is set for every other status.
type Result[T any] struct {
	Status Status   `json:"status"`
	Data   T        `json:"data,omitempty"`
	Err    *OpError `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Status == Success
}

// Retryable reports whether a retry policy may re-attempt the operation.
// Unimplemented, NotFound, PermissionDenied and Cancelled are never
// retryable regardless of the error flag.
func (r Result[T]) Retryable() bool {
	switch r.Status {
	case ConnectionFailed:
		return true
	case Error:
		return r.Err != nil && r.Err.Retryable
	default:
		return false
	}
}

// Ok builds a successful result carrying data.
func Ok[T any](data T) Result[T] {
	return Result[T]{Status: Success, Data: data}
}

// Done builds a successful result with no payload.
func Done() Result[Empty] {
	return Result[Empty]{Status: Success}
}

// NotFoundf builds a NotFound result for the given target.
func NotFoundf[T any](target string) Result[T] {
	return Result[T]{
		Status: NotFound,
		Err:    &OpError{Code: "not_found", Message: fmt.Sprintf("%s does not exist", target)},
	}
}

// Denied builds a PermissionDenied result for the given target.
func Denied[T any](target string) Result[T] {
	return Result[T]{
		Status: PermissionDenied,
		Err:    &OpError{Code: "permission_denied", Message: fmt.Sprintf("access to %s denied", target)},
	}
}

// ConnFailed builds a ConnectionFailed result. Always retryable.
func ConnFailed[T any](message string, cause error) Result[T] {
	return Result[T]{
		Status: ConnectionFailed,
		Err:    &OpError{Code: "connection_failed", Message: message, Retryable: true, Cause: cause},
	}
}

// Unsupported builds an Unimplemented result for the named operation.
func Unsupported[T any](opName string) Result[T] {
	return Result[T]{
		Status: Unimplemented,
		Err:    &OpError{Code: "unimplemented", Message: fmt.Sprintf("backend does not support %s", opName)},
	}
}

// Aborted builds a Cancelled result.
func Aborted[T any]() Result[T] {
	return Result[T]{
		Status: Cancelled,
		Err:    &OpError{Code: "cancelled", Message: "operation cancelled"},
	}
}

// Failed builds a generic Error result. Not retryable unless the caller
// marks the OpError afterwards.
func Failed[T any](code, message string) Result[T] {
	return Result[T]{
		Status: Error,
		Err:    &OpError{Code: code, Message: message},
	}
}

// Wrap builds a generic Error result around an underlying error.
func Wrap[T any](code string, cause error) Result[T] {
	return Result[T]{
		Status: Error,
		Err:    &OpError{Code: code, Message: cause.Error(), Cause: cause},
	}
}

// Discard drops the payload of a result, preserving status and error.
// Used where callers only care about the outcome.
func Discard[T any](r Result[T]) Result[Empty] {
	return Result[Empty]{Status: r.Status, Err: r.Err}
}

// Fail rebuilds a failed result under a different payload type. Calling it
// on a successful result is a programming error and yields a generic Error.
func Fail[T, U any](r Result[T]) Result[U] {
	if r.Status == Success {
		return Failed[U]("internal", "Fail called on successful result")
	}
	return Result[U]{Status: r.Status, Err: r.Err}
}
