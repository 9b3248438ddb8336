// Package metrics provides Prometheus metrics collection for edfm.
//
// All metrics are optional: if InitRegistry is never called, constructors
// return no-op implementations with zero overhead, and the executor runs
// without any collection.
//
// Usage:
//
//	// Initialize global registry (typically in main)
//	metrics.InitRegistry()
//
//	// Create a collector for the executor
//	m := metrics.NewExecutorMetrics()
package metrics

import "time"

// ExecutorMetrics observes plan execution.
//
// Implementations must be safe for concurrent use; the executor reports
// from multiple goroutines inside a plan group.
type ExecutorMetrics interface {
	// OperationCompleted records one terminal operation outcome.
	OperationCompleted(kind, status string, duration time.Duration)

	// RetryAttempted records one re-attempt of a backend call.
	RetryAttempted(kind string)

	// BytesUploaded records payload bytes committed to the backend.
	BytesUploaded(n int64)

	// BatchDeleteIssued records one bulk-delete call and its batch size.
	BatchDeleteIssued(size int)
}

// noopExecutorMetrics is the zero-overhead default.
type noopExecutorMetrics struct{}

func (noopExecutorMetrics) OperationCompleted(string, string, time.Duration) {}
func (noopExecutorMetrics) RetryAttempted(string)                            {}
func (noopExecutorMetrics) BytesUploaded(int64)                              {}
func (noopExecutorMetrics) BatchDeleteIssued(int)                            {}

// Noop returns the no-op ExecutorMetrics implementation.
func Noop() ExecutorMetrics {
	return noopExecutorMetrics{}
}
