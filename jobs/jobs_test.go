package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/odyssey-auth/internal/jobs"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func TestWelcomeEmailHandlerSendsMail(t *testing.T) {
	mailer := &fakeMailer{}
	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{UserID: uuid.New(), Email: "a@b.com", FirstName: "Ivan"})
	require.NoError(t, err)

	mux := NewServeMux(WorkerConfig{Mailer: mailer})
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@b.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "Hello Ivan")
}

func TestServeMuxRecordsJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mux := NewServeMux(WorkerConfig{Mailer: &fakeMailer{}, Metrics: jobmetrics.NewMetrics(reg)})
	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{UserID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "odyssey_jobs_total")
	assert.Contains(t, names, "odyssey_job_duration_seconds")
}

func TestWelcomeEmailHandlerRejectsBadPayloads(t *testing.T) {
	h := NewWelcomeEmailHandler(&fakeMailer{}, nil)

	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskTypeWelcomeEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	data, err := json.Marshal(WelcomeEmailPayload{UserID: uuid.New()})
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), asynq.NewTask(TaskTypeWelcomeEmail, data))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWelcomeEmailHandlerRetriesDeliveryFailure(t *testing.T) {
	boom := errors.New("relay refused")
	h := NewWelcomeEmailHandler(&fakeMailer{err: boom}, nil)
	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{UserID: uuid.New(), Email: "a@b.com"})
	require.NoError(t, err)

	err = h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestClientEnqueueWelcome(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.EnqueueWelcome(context.Background(), uuid.New(), "a@b.com", "Ivan"))

	pending, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestNewMailerFallsBackToLog(t *testing.T) {
	assert.IsType(t, LogMailer{}, NewMailer(SMTPConfig{}, nil))
	assert.IsType(t, &SMTPMailer{}, NewMailer(SMTPConfig{Host: "smtp.example.com", Port: 587}, nil))
	assert.NoError(t, LogMailer{}.Send(context.Background(), "a@b.com", "hi", "body"))
}

func TestNewWorkerRequiresMailer(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	assert.Error(t, err)
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}
