package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/template/domain"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{
		log:   log.Named("template.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Template, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domain.ErrInvalidBody
	}

	vehicleType := strings.ToUpper(strings.TrimSpace(req.VehicleType))
	if vehicleType == "" {
		vehicleType = domain.ApplyAll
	}
	if !domain.ValidApplicability(vehicleType) {
		return nil, domain.ErrInvalidVehicleType
	}

	now := time.Now().UTC()
	template := &domain.Template{
		ID:          s.genID.Generate(),
		Title:       title,
		Body:        body,
		Category:    strings.TrimSpace(req.Category),
		VehicleType: vehicleType,
		Active:      true,
		OrgID:       req.OrgID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Template, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domain.Filter, p pagination.Pagination) ([]*domain.Template, *pagination.PageInfo, error) {
	return s.repo.List(ctx, filter, p)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Template, error) {
	fields := map[string]any{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, domain.ErrInvalidTitle
		}
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return nil, domain.ErrInvalidBody
		}
		fields["body"] = strings.TrimSpace(*req.Body)
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.VehicleType != nil {
		vehicleType := strings.ToUpper(strings.TrimSpace(*req.VehicleType))
		if !domain.ValidApplicability(vehicleType) {
			return nil, domain.ErrInvalidVehicleType
		}
		fields["vehicle_type"] = vehicleType
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		return s.repo.FindByID(ctx, id)
	}
	fields["updated_at"] = time.Now().UTC()

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Resolve(ctx context.Context, req domain.ResolveRequest) ([]*domain.Template, error) {
	vehicleType := strings.ToUpper(strings.TrimSpace(req.VehicleType))
	if vehicleType == "" {
		vehicleType = vehicledomain.TypeCar
	}

	types := applicableTypes(vehicleType, req.IsElectric)

	var candidates []*domain.Template
	if req.OrgID == nil || req.UseGlobal {
		global, err := s.repo.ListActiveByTypes(ctx, nil, types)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, global...)
	}
	if req.OrgID != nil {
		own, err := s.repo.ListActiveByTypes(ctx, req.OrgID, types)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, own...)
	}

	return dedupe(candidates), nil
}

func applicableTypes(vehicleType string, isElectric bool) []string {
	types := []string{domain.ApplyAll, vehicleType}
	if isElectric {
		types = append(types, domain.ApplyElectric)
	}
	return types
}

func dedupe(templates []*domain.Template) []*domain.Template {
	seen := make(map[snowflake.ID]struct{}, len(templates))
	out := make([]*domain.Template, 0, len(templates))
	for _, template := range templates {
		if _, ok := seen[template.ID]; ok {
			continue
		}
		seen[template.ID] = struct{}{}
		out = append(out, template)
	}
	return out
}
