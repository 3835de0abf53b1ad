// Package jobmetrics instruments asynq task processing with Prometheus.
package jobmetrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against registerer, or against the
// default Prometheus registerer when it is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker records one task execution.
type Tracker struct {
	metrics  *Metrics
	taskType string
	start    time.Time
}

// Track starts timing a task of the given type.
func (m *Metrics) Track(taskType string) *Tracker {
	return &Tracker{metrics: m, taskType: taskType, start: time.Now()}
}

// End records duration and outcome, returning err untouched. Tasks rejected
// with asynq.SkipRetry count as "dropped" rather than "failure".
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.taskType == "" {
		return err
	}
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, asynq.SkipRetry):
		status = "dropped"
	default:
		status = "failure"
		t.metrics.failures.WithLabelValues(t.taskType).Inc()
	}
	t.metrics.runs.WithLabelValues(t.taskType, status).Inc()
	t.metrics.duration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	return err
}

// Middleware instruments every task processed by an asynq.ServeMux.
func (m *Metrics) Middleware(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		if m != nil {
			if n, ok := asynq.GetRetryCount(ctx); ok && n > 0 {
				m.retries.WithLabelValues(task.Type()).Inc()
			}
		}
		return m.Track(task.Type()).End(next.ProcessTask(ctx, task))
	})
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_jobs_total",
			Help: "Task executions by task type and status.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_jobs_failures_total",
			Help: "Task executions that failed and will be retried.",
		}, []string{"job"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_jobs_retries_total",
			Help: "Task executions that were retry attempts.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odyssey_job_duration_seconds",
			Help:    "Task execution duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
	registerer.MustRegister(m.runs, m.failures, m.retries, m.duration)
	return m
}
