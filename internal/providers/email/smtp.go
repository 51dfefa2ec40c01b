package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
)

type SMTPProvider struct{}

func NewSMTP() *SMTPProvider {
	return &SMTPProvider{}
}

func (p *SMTPProvider) Send(ctx context.Context, cfg Config, to []string, subject string, htmlBody string) error {
	if cfg.Host == "" {
		return errors.New("smtp host not configured")
	}
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, cfg.From, to, msg)
}
