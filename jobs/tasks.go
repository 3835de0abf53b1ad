package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeWelcomeEmail is the task type for the post-registration welcome mail.
	TaskTypeWelcomeEmail = "mail:welcome"
)

// WelcomeEmailPayload identifies the freshly registered account.
type WelcomeEmailPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
}

// NewWelcomeEmailTask constructs an Asynq task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWelcomeEmail, data, asynq.MaxRetry(5)), nil
}

// WelcomeEmailHandler renders and delivers welcome mails.
type WelcomeEmailHandler struct {
	mailer Mailer
	logger *slog.Logger
}

// NewWelcomeEmailHandler constructs a WelcomeEmailHandler.
func NewWelcomeEmailHandler(mailer Mailer, logger *slog.Logger) *WelcomeEmailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WelcomeEmailHandler{mailer: mailer, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *WelcomeEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode welcome payload: %v: %w", err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.Email) == "" {
		return fmt.Errorf("welcome payload without recipient: %w", asynq.SkipRetry)
	}
	subject, body := renderWelcome(payload)
	if err := h.mailer.Send(ctx, payload.Email, subject, body); err != nil {
		h.logger.Warn("send welcome email", slog.String("user_id", payload.UserID.String()), slog.Any("error", err))
		return err
	}
	h.logger.Info("welcome email sent", slog.String("user_id", payload.UserID.String()))
	return nil
}

func renderWelcome(p WelcomeEmailPayload) (string, string) {
	name := strings.TrimSpace(p.FirstName)
	if name == "" {
		name = p.Email
	}
	body := fmt.Sprintf("Hello %s,\n\nYour account has been created. Sign in with %s to get started.\n", name, p.Email)
	return "Welcome aboard", body
}
