package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/config"
	"github.com/notifycar/notifycar/internal/observability/metrics"
	"github.com/notifycar/notifycar/internal/providers/webhook"
	"github.com/notifycar/notifycar/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

type Params struct {
	fx.In

	Log     *zap.Logger
	Repo    domain.Repository
	Webhook webhook.Client
	Config  config.Config
	GenID   *snowflake.Node
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	webhook webhook.Client
	cfg     config.Config
	genID   *snowflake.Node
	metrics *metrics.Metrics
	ttl     time.Duration
}

func New(p Params) domain.Service {
	ttl := time.Duration(p.Config.VerifyCodeTTLMins) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		log:     p.Log.Named("verification.service"),
		repo:    p.Repo,
		webhook: p.Webhook,
		cfg:     p.Config,
		genID:   p.GenID,
		metrics: p.Metrics,
		ttl:     ttl,
	}
}

func (s *Service) Request(ctx context.Context, identifier string) error {
	phone := strings.TrimSpace(identifier)
	if !phonePattern.MatchString(phone) {
		return domain.ErrInvalidIdentifier
	}

	code, err := newCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	token := &domain.Token{
		ID:         s.genID.Generate(),
		Identifier: phone,
		Code:       code,
		ExpiresAt:  now.Add(s.ttl),
		Verified:   false,
		CreatedAt:  now,
	}
	if err := s.repo.Upsert(ctx, token); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordVerificationRequest(ctx)
	}

	// Code delivery is best effort; the caller can always request a
	// fresh code.
	if url := strings.TrimSpace(s.cfg.VerifyWebhookURL); url != "" {
		payload := webhook.Payload{
			PhoneNumber: phone,
			RawMessage:  code,
			Message:     fmt.Sprintf("Your NotifyCar verification code is %s", code),
			Content:     fmt.Sprintf("Your NotifyCar verification code is %s", code),
			Timestamp:   now.Format(time.RFC3339),
		}
		if err := s.webhook.Deliver(ctx, url, payload); err != nil {
			s.log.Warn("verification code delivery failed",
				zap.String("identifier", phone),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordWebhookFailure(ctx, "verification")
			}
		}
	}

	return nil
}

func (s *Service) Confirm(ctx context.Context, identifier, code string) error {
	phone := strings.TrimSpace(identifier)
	if phone == "" {
		return domain.ErrInvalidIdentifier
	}

	token, err := s.repo.FindByIdentifier(ctx, phone)
	if err != nil {
		return err
	}
	if token.Verified {
		return domain.ErrAlreadyVerified
	}
	if time.Now().UTC().After(token.ExpiresAt) {
		return domain.ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(token.Code), []byte(strings.TrimSpace(code))) != 1 {
		return domain.ErrCodeMismatch
	}

	if err := s.repo.MarkVerified(ctx, phone); err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) {
			return domain.ErrAlreadyVerified
		}
		return err
	}
	return nil
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
