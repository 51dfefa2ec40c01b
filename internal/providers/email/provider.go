package email

import "context"

// Config holds SMTP connection settings, resolved per send from the
// system settings row with env fallback.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Provider interface {
	Send(ctx context.Context, cfg Config, to []string, subject string, htmlBody string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, cfg Config, to []string, subject string, htmlBody string) error {
	return nil
}
