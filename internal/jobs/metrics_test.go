package jobmetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMiddlewareCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := m.Middleware(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return nil }))
	boom := errors.New("boom")
	fail := m.Middleware(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return boom }))

	require.NoError(t, ok.ProcessTask(context.Background(), asynq.NewTask("mail:welcome", nil)))
	require.ErrorIs(t, fail.ProcessTask(context.Background(), asynq.NewTask("mail:welcome", nil)), boom)

	assert.Equal(t, 1.0, counterValue(t, reg, "odyssey_jobs_total", map[string]string{"job": "mail:welcome", "status": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "odyssey_jobs_total", map[string]string{"job": "mail:welcome", "status": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "odyssey_jobs_failures_total", map[string]string{"job": "mail:welcome"}))
}

func TestSkipRetryCountsAsDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	h := m.Middleware(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return asynq.SkipRetry }))
	require.ErrorIs(t, h.ProcessTask(context.Background(), asynq.NewTask("mail:welcome", nil)), asynq.SkipRetry)

	assert.Equal(t, 1.0, counterValue(t, reg, "odyssey_jobs_total", map[string]string{"job": "mail:welcome", "status": "dropped"}))
	assert.Equal(t, 0.0, counterValue(t, reg, "odyssey_jobs_failures_total", map[string]string{"job": "mail:welcome"}))
}

func TestNilTrackerPassesErrorThrough(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("x").End(boom), boom)
	h := m.Middleware(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return boom }))
	require.ErrorIs(t, h.ProcessTask(context.Background(), asynq.NewTask("x", nil)), boom)
}
