package notify

import (
	"context"
	"fmt"

	"learnhub/internal/pkg/config"

	"gopkg.in/gomail.v2"
)

// mailDialer 抽象 gomail.Dialer，便于测试
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender SMTP 邮件渠道
type EmailSender struct {
	dialer mailDialer
	from   string
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *EmailSender) Name() string { return "email" }

func (s *EmailSender) Accepts(to Recipient) bool { return to.Email != "" }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To.Email, err)
	}
	return nil
}
