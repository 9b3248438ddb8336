package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// executorMetrics is the Prometheus implementation of ExecutorMetrics.
type executorMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	retriesTotal      *prometheus.CounterVec
	uploadBytesTotal  prometheus.Counter
	bulkDeleteBatches prometheus.Counter
	bulkDeleteSize    prometheus.Histogram
}

// NewExecutorMetrics creates a Prometheus-backed ExecutorMetrics.
//
// Returns the no-op implementation when metrics are disabled
// (InitRegistry not called).
func NewExecutorMetrics() ExecutorMetrics {
	if !IsEnabled() {
		return Noop()
	}

	reg := GetRegistry()

	return &executorMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edfm_operations_total",
				Help: "Total plan operations by kind and terminal status",
			},
			[]string{"kind", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edfm_operation_duration_seconds",
				Help:    "Duration of plan operations in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"kind"},
		),
		retriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edfm_retries_total",
				Help: "Total backend call re-attempts by operation kind",
			},
			[]string{"kind"},
		),
		uploadBytesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "edfm_upload_bytes_total",
				Help: "Total payload bytes committed to backends",
			},
		),
		bulkDeleteBatches: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "edfm_bulk_delete_batches_total",
				Help: "Total bulk-delete batches issued",
			},
		),
		bulkDeleteSize: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edfm_bulk_delete_batch_size",
				Help:    "Number of paths per bulk-delete batch",
				Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
			},
		),
	}
}

func (m *executorMetrics) OperationCompleted(kind, status string, duration time.Duration) {
	m.operationsTotal.WithLabelValues(kind, status).Inc()
	m.operationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *executorMetrics) RetryAttempted(kind string) {
	m.retriesTotal.WithLabelValues(kind).Inc()
}

func (m *executorMetrics) BytesUploaded(n int64) {
	if n > 0 {
		m.uploadBytesTotal.Add(float64(n))
	}
}

func (m *executorMetrics) BatchDeleteIssued(size int) {
	m.bulkDeleteBatches.Inc()
	m.bulkDeleteSize.Observe(float64(size))
}
