package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/logger"
)

// Message is a rendered email with plain text and HTML bodies.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

// NewMailer returns an SMTPMailer, or a LogMailer when no SMTP host is configured.
func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("EMAIL_HOST not set, outgoing mail will only be logged")
		return LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	gm.AddAlternative("text/html", msg.HTML)

	d := gomail.NewDialer(
		m.cfg.SMTPHost,
		m.cfg.SMTPPort,
		m.cfg.SMTPUser,
		m.cfg.SMTPPassword,
	)

	if err := d.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer logs messages instead of delivering them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.FromContext(ctx).Info("Mail not delivered, no SMTP host configured",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
