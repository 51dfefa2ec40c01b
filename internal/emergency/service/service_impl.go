package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/emergency/domain"
	referencedomain "github.com/notifycar/notifycar/internal/reference/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	log       *zap.Logger
	repo      domain.Repository
	countries referencedomain.Repository
	genID     *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, countries referencedomain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{
		log:       log.Named("emergency.service"),
		repo:      repo,
		countries: countries,
		genID:     genID,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (*domain.Config, error) {
	country := strings.TrimSpace(req.Country)
	if country == "" {
		return nil, domain.ErrInvalidCountry
	}
	// Two-letter values are ISO codes: canonicalize through the
	// countries table so configs are keyed by the display name.
	if len(country) == 2 {
		ref, err := s.countries.FindCountry(ctx, country)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCountry
		}
		if err != nil {
			return nil, err
		}
		country = ref.Name
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	cfg := &domain.Config{
		ID:        s.genID.Generate(),
		Country:   country,
		Police:    strings.TrimSpace(req.Police),
		Ambulance: strings.TrimSpace(req.Ambulance),
		Fire:      strings.TrimSpace(req.Fire),
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	// Re-read: on conflict the stored row keeps its original id.
	return s.repo.FindByCountry(ctx, country)
}

func (s *Service) Get(ctx context.Context, country string) (*domain.Config, error) {
	if strings.TrimSpace(country) == "" {
		return nil, domain.ErrInvalidCountry
	}
	return s.repo.FindByCountry(ctx, country)
}

func (s *Service) List(ctx context.Context) ([]*domain.Config, error) {
	return s.repo.List(ctx, false)
}

func (s *Service) ListActive(ctx context.Context) ([]*domain.Config, error) {
	return s.repo.List(ctx, true)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.repo.Delete(ctx, id)
}
