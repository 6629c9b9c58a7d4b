package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"meca_backend/internal/config"
)

// SMTPProvider implements Provider over gomail.
type SMTPProvider struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func NewSMTPProvider(cfg *config.Config) (*SMTPProvider, error) {
	if cfg.Email.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.Email.SMTPPort <= 0 || cfg.Email.SMTPPort > 65535 {
		return nil, fmt.Errorf("invalid SMTP port: %d", cfg.Email.SMTPPort)
	}

	dialer := gomail.NewDialer(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername, cfg.Email.SMTPPassword)

	return &SMTPProvider{
		dialer:    dialer,
		fromEmail: cfg.Email.FromEmail,
		fromName:  cfg.Email.FromName,
	}, nil
}

func (p *SMTPProvider) Send(msg *Message) error {
	if msg.To == "" {
		return fmt.Errorf("no recipient specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.fromEmail, p.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	return p.dialer.DialAndSend(m)
}

func (p *SMTPProvider) Close() error {
	return nil
}
