package notification

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/model"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// EmailNotifier sends alert summaries as HTML e-mail.
type EmailNotifier struct {
	cfg        config.SMTPConfig
	auth       smtp.Auth
	recipients []string
	send       func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a new EmailNotifier. cfg.To is a comma-separated list.
func NewEmailNotifier(cfg config.SMTPConfig) model.Notifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		// PlainAuth will not send credentials until the server identifies itself as a trusted one.
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &EmailNotifier{
		cfg:        cfg,
		auth:       auth,
		recipients: splitRecipients(cfg.To),
		send:       smtp.SendMail,
	}
}

// Send mails the HTML body to every configured recipient.
func (n *EmailNotifier) Send(subject, body string) error {
	if len(n.recipients) == 0 {
		return fmt.Errorf("no e-mail recipients configured")
	}
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	msg := buildMessage(n.cfg.From, n.recipients, subject, body, time.Now())

	if err := n.send(addr, n.auth, n.cfg.From, n.recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func splitRecipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func buildMessage(from string, to []string, subject, body string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
