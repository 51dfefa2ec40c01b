package service

import (
	"context"
	"strings"
	"time"

	"github.com/notifycar/notifycar/internal/config"
	"github.com/notifycar/notifycar/internal/providers/email"
	"github.com/notifycar/notifycar/internal/settings/domain"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	cfg   config.Config
	email email.Provider
}

func New(log *zap.Logger, repo domain.Repository, cfg config.Config, provider email.Provider) domain.Service {
	return &Service{
		log:   log.Named("settings.service"),
		repo:  repo,
		cfg:   cfg,
		email: provider,
	}
}

func (s *Service) Get(ctx context.Context) (*domain.SystemSetting, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.SystemSetting, error) {
	fields := map[string]any{}
	if req.SiteName != nil {
		fields["site_name"] = strings.TrimSpace(*req.SiteName)
	}
	if req.MaintenanceMode != nil {
		fields["maintenance_mode"] = *req.MaintenanceMode
	}
	if req.MessageWrapper != nil {
		fields["message_wrapper"] = strings.TrimSpace(*req.MessageWrapper)
	}
	if req.SMTPHost != nil {
		fields["smtp_host"] = strings.TrimSpace(*req.SMTPHost)
	}
	if req.SMTPPort != nil {
		if *req.SMTPPort <= 0 || *req.SMTPPort > 65535 {
			return nil, domain.ErrInvalidInput
		}
		fields["smtp_port"] = *req.SMTPPort
	}
	if req.SMTPUsername != nil {
		fields["smtp_username"] = strings.TrimSpace(*req.SMTPUsername)
	}
	if req.SMTPPassword != nil {
		fields["smtp_password"] = *req.SMTPPassword
	}
	if req.SMTPFrom != nil {
		fields["smtp_from"] = strings.TrimSpace(*req.SMTPFrom)
	}
	if req.AnalyticsID != nil {
		fields["analytics_id"] = strings.TrimSpace(*req.AnalyticsID)
	}
	if req.WebhookURL != nil {
		fields["webhook_url"] = strings.TrimSpace(*req.WebhookURL)
	}
	if len(fields) == 0 {
		return s.repo.Get(ctx)
	}
	fields["updated_at"] = time.Now().UTC()

	if err := s.repo.UpdateFields(ctx, fields); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx)
}

func (s *Service) TestSMTP(ctx context.Context, to string) error {
	recipient := strings.TrimSpace(to)
	if recipient == "" {
		return domain.ErrInvalidInput
	}

	setting, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}

	emailCfg := s.resolveEmailConfig(setting)
	return s.email.Send(ctx, emailCfg, []string{recipient},
		"NotifyCar SMTP test",
		"<p>This is a test message confirming your SMTP configuration.</p>")
}

// resolveEmailConfig prefers the settings row and falls back to env
// per field.
func (s *Service) resolveEmailConfig(setting *domain.SystemSetting) email.Config {
	cfg := email.Config{
		Host:     setting.SMTPHost,
		Port:     setting.SMTPPort,
		Username: setting.SMTPUsername,
		Password: setting.SMTPPassword,
		From:     setting.SMTPFrom,
	}
	if cfg.Host == "" {
		cfg.Host = s.cfg.SMTPHost
	}
	if cfg.Port == 0 {
		cfg.Port = s.cfg.SMTPPort
	}
	if cfg.Username == "" {
		cfg.Username = s.cfg.SMTPUsername
	}
	if cfg.Password == "" {
		cfg.Password = s.cfg.SMTPPassword
	}
	if cfg.From == "" {
		cfg.From = s.cfg.SMTPFrom
	}
	return cfg
}
