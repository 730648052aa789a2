// Package metrics records run statistics in a private Prometheus registry and
// exposes runtime memory snapshots for the dashboard.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "fibseq"

// Task status label values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Recorder holds the counters and histograms of one process. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	tasksSubmitted prometheus.Counter
	tasksCompleted *prometheus.CounterVec
	taskDuration   prometheus.Histogram
	barrierWait    prometheus.Histogram
	poolWorkers    *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry so that parallel
// tests never share state through the global default registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		tasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of sequence tasks submitted to the worker pool.",
		}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of sequence tasks that signaled completion, by status.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Time spent computing a single sequence term.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 14),
		}),
		barrierWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "barrier_wait_seconds",
			Help:      "Time the caller spent blocked on the completion barrier.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		poolWorkers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_workers",
			Help:      "Number of workers of the pool used by the last run, by backend.",
		}, []string{"backend"}),
	}
	r.registry.MustRegister(r.tasksSubmitted, r.tasksCompleted, r.taskDuration, r.barrierWait, r.poolWorkers)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// TaskSubmitted counts one submission.
func (r *Recorder) TaskSubmitted() {
	if r == nil {
		return
	}
	r.tasksSubmitted.Inc()
}

// TaskCompleted records the outcome and duration of a task.
func (r *Recorder) TaskCompleted(failed bool, d time.Duration) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if failed {
		status = StatusFailed
	}
	r.tasksCompleted.WithLabelValues(status).Inc()
	r.taskDuration.Observe(d.Seconds())
}

// BarrierWaited records how long the caller was blocked on the barrier.
func (r *Recorder) BarrierWaited(d time.Duration) {
	if r == nil {
		return
	}
	r.barrierWait.Observe(d.Seconds())
}

// PoolStarted records the size of the pool used for a run.
func (r *Recorder) PoolStarted(backend string, workers int) {
	if r == nil {
		return
	}
	r.poolWorkers.WithLabelValues(backend).Set(float64(workers))
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	if r == nil {
		return nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encoding metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
