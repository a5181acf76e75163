package infra

import (
	"fmt"
	"net/smtp"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
// Every send goes through a circuit breaker so a dead SMTP relay fails fast.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	breaker  *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewCircuitBreaker(DefaultCBConfig()),
	}
}

// Configured reports whether an SMTP host is set.
func (m *Mailer) Configured() bool { return m.host != "" }

// BreakerState exposes the SMTP circuit state for the health endpoint.
func (m *Mailer) BreakerState() CBState { return m.breaker.State() }

// SendOferta sends the final offer PDF to the given address.
func (m *Mailer) SendOferta(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.breaker.Execute(func() error { return e.Send(m.addr, auth) })
}
