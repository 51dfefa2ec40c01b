package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/notifycar/notifycar/internal/organization/domain"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	"github.com/notifycar/notifycar/pkg/db"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"go.uber.org/zap"
)

const publicTokenBytes = 24

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	users userdomain.Service
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, users userdomain.Service, genID *snowflake.Node) domain.Service {
	return &Service{
		log:   log.Named("organization.service"),
		repo:  repo,
		users: users,
		genID: genID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	orgType := strings.ToUpper(strings.TrimSpace(req.Type))
	if !domain.ValidType(orgType) {
		return nil, domain.ErrInvalidType
	}

	orgSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}
	token, err := newPublicToken()
	if err != nil {
		return nil, err
	}

	useGlobal := true
	if req.UseGlobalTemplates != nil {
		useGlobal = *req.UseGlobalTemplates
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:                 s.genID.Generate(),
		Name:               name,
		Slug:               orgSlug,
		Type:               orgType,
		Active:             true,
		MessageWrapper:     strings.TrimSpace(req.MessageWrapper),
		PublicToken:        token,
		UseGlobalTemplates: useGlobal,
		ContactEmail:       strings.TrimSpace(req.ContactEmail),
		ContactPhone:       strings.TrimSpace(req.ContactPhone),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("type", org.Type),
	)

	if strings.TrimSpace(req.OperatorEmail) != "" {
		if err := s.seedOperator(ctx, org, req); err != nil {
			// The org exists; the operator account can be created
			// again through the user endpoints.
			s.log.Warn("failed to seed operator account",
				zap.String("org_id", org.ID.String()),
				zap.Error(err),
			)
		}
	}

	return org, nil
}

func (s *Service) seedOperator(ctx context.Context, org *domain.Organization, req domain.CreateRequest) error {
	role := userdomain.RoleCorporate
	if org.Type == domain.TypeInstitutional || org.Type == domain.TypeBlueZone {
		role = userdomain.RoleInstitutional
	}

	operatorName := strings.TrimSpace(req.OperatorName)
	if operatorName == "" {
		operatorName = org.Name + " Operator"
	}

	orgID := org.ID
	_, err := s.users.Create(ctx, userdomain.CreateRequest{
		Email:    req.OperatorEmail,
		Password: req.OperatorPassword,
		Name:     operatorName,
		Role:     role,
		OrgID:    &orgID,
	})
	return err
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetByPublicToken(ctx context.Context, token string) (*domain.Organization, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNotFound
	}
	org, err := s.repo.FindByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !org.Active {
		return nil, domain.ErrNotFound
	}
	return org, nil
}

func (s *Service) List(ctx context.Context, filter domain.Filter, p pagination.Pagination) ([]*domain.Organization, *pagination.PageInfo, error) {
	return s.repo.List(ctx, filter, p)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Organization, error) {
	fields := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		orgType := strings.ToUpper(strings.TrimSpace(*req.Type))
		if !domain.ValidType(orgType) {
			return nil, domain.ErrInvalidType
		}
		fields["type"] = orgType
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.MessageWrapper != nil {
		fields["message_wrapper"] = strings.TrimSpace(*req.MessageWrapper)
	}
	if req.UseGlobalTemplates != nil {
		fields["use_global_templates"] = *req.UseGlobalTemplates
	}
	if req.ContactEmail != nil {
		fields["contact_email"] = strings.TrimSpace(*req.ContactEmail)
	}
	if req.ContactPhone != nil {
		fields["contact_phone"] = strings.TrimSpace(*req.ContactPhone)
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

// RotatePublicToken invalidates the current bypass link and issues a
// new one.
func (s *Service) RotatePublicToken(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	token, err := newPublicToken()
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]any{
		"public_token": token,
		"updated_at":   time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	s.log.Info("public token rotated", zap.String("org_id", id.String()))
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 0; i < 5; i++ {
		_, err := s.repo.FindBySlug(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		suffix := make([]byte, 3)
		if _, err := rand.Read(suffix); err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%x", base, suffix)
	}
	return "", domain.ErrSlugTaken
}

func newPublicToken() (string, error) {
	buf := make([]byte, publicTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
