package email

import (
	"context"
	"errors"
	"fmt"

	"homefix_backend/internal/config"

	"gopkg.in/gomail.v2"
)

const companyName = "HomeFix"

var ErrNoRecipient = errors.New("email: no recipient")

// SMTPMailer отправляет письма через SMTP (gomail)
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send реализует services.Mailer
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := m.build(to, subject, body)
	if err != nil {
		return err
	}

	// gomail не принимает context, поэтому ждём в отдельной горутине
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SMTPMailer) build(to, subject, body string) (*gomail.Message, error) {
	if to == "" {
		return nil, ErrNoRecipient
	}
	html, err := Render(TemplateData{Subject: subject, Message: body, Company: companyName})
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.AddAlternative("text/html", html)
	return msg, nil
}
