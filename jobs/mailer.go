package jobs

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"
)

// Mailer delivers a plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig describes the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
	d.SSL = m.cfg.SSL
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("jobs: smtp send: %w", err)
	}
	return nil
}

// LogMailer writes messages to the logger instead of sending them.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(_ context.Context, to, subject, _ string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail suppressed", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a LogMailer.
func NewMailer(cfg SMTPConfig, logger *slog.Logger) Mailer {
	if cfg.Host == "" {
		return LogMailer{Logger: logger}
	}
	return NewSMTPMailer(cfg)
}
