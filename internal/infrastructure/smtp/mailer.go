package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// CodeNotifier delivers verification codes over email.
type CodeNotifier struct {
	mailer Mailer
}

func NewCodeNotifier(m Mailer) *CodeNotifier {
	return &CodeNotifier{mailer: m}
}

func (n *CodeNotifier) Deliver(_ context.Context, address, code string) error {
	body := "Your verification code is: " + code
	if err := n.mailer.SendEmail(address, "Your verification code", body); err != nil {
		return fmt.Errorf("send email to %s: %w", address, domain.ErrDeliveryFailed)
	}
	return nil
}
