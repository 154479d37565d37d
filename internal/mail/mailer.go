package mail

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer delivers a plain-text message to a single recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through an SMTP relay. Port selects the handshake:
// 465 is implicit TLS, 587 is STARTTLS, anything else goes out plain.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)

	switch m.Port {
	case 465:
		return e.SendWithTLS(addr, auth, &tls.Config{
			ServerName: m.Host,
			MinVersion: tls.VersionTLS12,
		})
	case 587:
		return e.SendWithStartTLS(addr, auth, &tls.Config{
			ServerName: m.Host,
			MinVersion: tls.VersionTLS12,
		})
	default:
		return e.Send(addr, auth)
	}
}

// LogMailer writes messages to the log instead of delivering them. Used
// when no SMTP host is configured, so development setups can read
// confirmation codes straight from the server output.
type LogMailer struct {
	Logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) Send(to, subject, body string) error {
	m.Logger.Info("outgoing mail", "to", to, "subject", subject, "body", body)
	return nil
}
