package domain

import (
	"context"
	"errors"
)

type Repository interface {
	Get(ctx context.Context) (*SystemSetting, error)
	Save(ctx context.Context, setting *SystemSetting) error
	UpdateFields(ctx context.Context, fields map[string]any) error
}

type Service interface {
	Get(ctx context.Context) (*SystemSetting, error)
	Update(ctx context.Context, req UpdateRequest) (*SystemSetting, error)
	// TestSMTP sends a probe mail and returns the transport failure
	// verbatim so a misconfiguration is visible to the admin.
	TestSMTP(ctx context.Context, to string) error
}

// UpdateRequest carries editable fields. Nil means unchanged.
type UpdateRequest struct {
	SiteName        *string
	MaintenanceMode *bool
	MessageWrapper  *string
	SMTPHost        *string
	SMTPPort        *int
	SMTPUsername    *string
	SMTPPassword    *string
	SMTPFrom        *string
	AnalyticsID     *string
	WebhookURL      *string
}

var (
	ErrNotFound     = errors.New("settings_not_found")
	ErrInvalidInput = errors.New("invalid_input")
)
