package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/auth/password"
	"github.com/notifycar/notifycar/internal/observability/metrics"
	"github.com/notifycar/notifycar/internal/user/domain"
	"github.com/notifycar/notifycar/pkg/db"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	metrics *metrics.Metrics
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, m *metrics.Metrics) domain.Service {
	return &Service{
		log:     log.Named("user.service"),
		repo:    repo,
		genID:   genID,
		metrics: m,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	return s.create(ctx, domain.CreateRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     domain.RoleDriver,
	})
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.User, error) {
	if req.Role == "" {
		req.Role = domain.RoleDriver
	}
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req domain.CreateRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name", domain.ErrInvalidInput)
	}
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                  s.genID.Generate(),
		Email:               email,
		PasswordHash:        &hashed,
		Name:                strings.TrimSpace(req.Name),
		Phone:               strings.TrimSpace(req.Phone),
		Role:                req.Role,
		OrgID:               req.OrgID,
		Active:              true,
		LastPasswordChanged: &now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// The unique index backs the existence check under
		// concurrent registration.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return user, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domain.Filter, p pagination.Pagination) ([]*domain.User, *pagination.PageInfo, error) {
	return s.repo.List(ctx, filter, p)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.User, error) {
	fields := map[string]any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name", domain.ErrInvalidInput)
		}
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return nil, domain.ErrInvalidRole
		}
		fields["role"] = *req.Role
	}
	if req.ClearOrg {
		fields["org_id"] = nil
	} else if req.OrgID != nil {
		fields["org_id"] = *req.OrgID
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

func (s *Service) UpdateProfile(ctx context.Context, id snowflake.ID, req domain.ProfileRequest) (*domain.User, error) {
	return s.Update(ctx, id, domain.UpdateRequest{Name: req.Name, Phone: req.Phone})
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.repo.Delete(ctx, id)
}

// ImportCSV loads user rows from an uploaded CSV file. The first row
// is a header mapped case-insensitively; row failures are collected,
// never aborting the import.
func (s *Service) ImportCSV(ctx context.Context, orgID *snowflake.ID, r io.Reader) (*domain.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrInvalidInput)
	}
	columns := headerIndex(header)
	if _, ok := columns["email"]; !ok {
		return nil, fmt.Errorf("%w: header must include email", domain.ErrInvalidInput)
	}

	result := &domain.ImportResult{Errors: []string{}}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if isEmptyRecord(record) {
			continue
		}

		req := domain.CreateRequest{
			Email: field(record, columns, "email"),
			Name:  field(record, columns, "name"),
			Phone: field(record, columns, "phone"),
			Role:  strings.ToUpper(field(record, columns, "role")),
			OrgID: orgID,
		}
		if req.Role == "" {
			if orgID != nil {
				req.Role = domain.RoleOperator
			} else {
				req.Role = domain.RoleDriver
			}
		}
		req.Password = field(record, columns, "password")
		if req.Password == "" {
			generated, err := randomPassword()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			req.Password = generated
		}

		if _, err := s.create(ctx, req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d (%s): %v", line, req.Email, err))
			continue
		}
		result.Success++
	}

	if s.metrics != nil {
		s.metrics.RecordImportRows(ctx, "users", result.Success, len(result.Errors))
	}
	return result, nil
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func field(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func isEmptyRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}
