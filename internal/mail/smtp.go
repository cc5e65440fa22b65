package mail

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/techexpert/helpdesk/internal/config"
)

// SMTPMailer sends mail through an SMTP relay using gomail.
type SMTPMailer struct {
	cfg    config.NotificationConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer builds a mailer from notification config.
func NewSMTPMailer(cfg config.NotificationConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &SMTPMailer{cfg: cfg, dialer: dialer}
}

// Send delivers the message, honoring the configured send timeout. gomail has
// no context support, so the dial-and-send runs in a goroutine and the caller
// observes ctx cancellation or the timeout as an error.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.EmailFrom)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.SendTimeout())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
