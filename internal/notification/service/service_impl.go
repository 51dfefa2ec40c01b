package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/config"
	"github.com/notifycar/notifycar/internal/notification/domain"
	"github.com/notifycar/notifycar/internal/observability/metrics"
	orgdomain "github.com/notifycar/notifycar/internal/organization/domain"
	"github.com/notifycar/notifycar/internal/providers/webhook"
	settingsdomain "github.com/notifycar/notifycar/internal/settings/domain"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// WrapperPlaceholder marks where the original message goes inside an
// org or system wrapper template.
const WrapperPlaceholder = "{{message}}"

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     domain.Repository
	Vehicles vehicledomain.Repository
	Orgs     orgdomain.Repository
	Settings settingsdomain.Repository
	Webhook  webhook.Client
	Config   config.Config
	GenID    *snowflake.Node
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	vehicles vehicledomain.Repository
	orgs     orgdomain.Repository
	settings settingsdomain.Repository
	webhook  webhook.Client
	cfg      config.Config
	genID    *snowflake.Node
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("notification.service"),
		repo:     p.Repo,
		vehicles: p.Vehicles,
		orgs:     p.Orgs,
		settings: p.Settings,
		webhook:  p.Webhook,
		cfg:      p.Config,
		genID:    p.GenID,
		metrics:  p.Metrics,
	}
}

func (s *Service) Send(ctx context.Context, req domain.SendRequest) (*domain.Notification, error) {
	raw := strings.TrimSpace(req.Message)
	if raw == "" {
		return nil, domain.ErrEmptyMessage
	}

	vehicle, err := s.vehicles.FindByPlate(ctx, req.Plate)
	if err != nil {
		if errors.Is(err, vehicledomain.ErrNotFound) {
			return nil, domain.ErrVehicleUnknown
		}
		return nil, err
	}

	setting, err := s.settings.Get(ctx)
	if err != nil && !errors.Is(err, settingsdomain.ErrNotFound) {
		return nil, err
	}

	message := raw
	if req.OrgID != nil {
		org, err := s.orgs.FindByID(ctx, *req.OrgID)
		if err != nil && !errors.Is(err, orgdomain.ErrNotFound) {
			return nil, err
		}
		if org != nil {
			message = applyWrapper(org.MessageWrapper, message)
		}
	}
	if setting != nil {
		message = applyWrapper(setting.MessageWrapper, message)
	}

	notification := &domain.Notification{
		ID:          s.genID.Generate(),
		VehicleID:   vehicle.ID,
		Plate:       vehicle.Plate,
		OrgID:       req.OrgID,
		SenderID:    req.SenderID,
		TemplateID:  req.TemplateID,
		RawMessage:  raw,
		Message:     message,
		SenderName:  strings.TrimSpace(req.SenderName),
		SenderPhone: strings.TrimSpace(req.SenderPhone),
		Status:      domain.StatusSent,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.deliver(ctx, notification, vehicle, setting)

	if s.metrics != nil {
		s.metrics.RecordNotificationSent(ctx, notification.Status)
	}
	return notification, nil
}

// deliver posts the notification to the outbound webhook. Failures
// mark the record FAILED and are logged, never surfaced.
func (s *Service) deliver(ctx context.Context, notification *domain.Notification, vehicle *vehicledomain.Vehicle, setting *settingsdomain.SystemSetting) {
	url := s.cfg.WebhookURL
	if setting != nil && strings.TrimSpace(setting.WebhookURL) != "" {
		url = strings.TrimSpace(setting.WebhookURL)
	}
	if url == "" {
		return
	}

	payload := webhook.Payload{
		NotificationID: notification.ID.String(),
		Plate:          notification.Plate,
		OwnerName:      vehicle.OwnerName,
		PhoneNumber:    vehicle.OwnerPhone,
		RawMessage:     notification.RawMessage,
		Message:        notification.Message,
		Content:        notification.Message,
		Timestamp:      notification.CreatedAt.Format(time.RFC3339),
	}

	if err := s.webhook.Deliver(ctx, url, payload); err != nil {
		s.log.Warn("webhook delivery failed",
			zap.String("notification_id", notification.ID.String()),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordWebhookFailure(ctx, "notification")
		}
		notification.Status = domain.StatusFailed
		if err := s.repo.UpdateStatus(ctx, notification.ID, domain.StatusFailed); err != nil {
			s.log.Warn("failed to mark notification failed", zap.Error(err))
		}
		return
	}

	notification.Status = domain.StatusDelivered
	if err := s.repo.UpdateStatus(ctx, notification.ID, domain.StatusDelivered); err != nil {
		s.log.Warn("failed to mark notification delivered", zap.Error(err))
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domain.Filter, p pagination.Pagination) ([]*domain.Notification, *pagination.PageInfo, error) {
	return s.repo.List(ctx, filter, p)
}

func applyWrapper(wrapper, message string) string {
	wrapper = strings.TrimSpace(wrapper)
	if wrapper == "" {
		return message
	}
	if strings.Contains(wrapper, WrapperPlaceholder) {
		return strings.ReplaceAll(wrapper, WrapperPlaceholder, message)
	}
	return wrapper + " " + message
}
