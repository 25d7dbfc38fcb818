package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/frahmantamala/org-directory/internal"
)

// SMTPSender is the production Sender backed by a plain SMTP relay.
type SMTPSender struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *slog.Logger
}

func NewSMTPSender(cfg internal.EmailConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:   cfg.SMTPHost,
		port:   cfg.SMTPPort,
		user:   cfg.SMTPUser,
		pass:   cfg.SMTPPass,
		from:   cfg.FromAddress,
		logger: logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		htmlBody + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		s.logger.Error("smtp delivery failed", "to", to, "error", err)
		return internal.NewInternalError("email delivery failed", err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// NoopSender satisfies Sender without delivering anything. Used in
// development environments without an SMTP relay.
type NoopSender struct {
	Logger *slog.Logger
}

func (n *NoopSender) Send(_ context.Context, to, subject, _ string) error {
	n.Logger.Info("email suppressed (noop sender)", "to", to, "subject", subject)
	return nil
}
