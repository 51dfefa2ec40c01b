package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/observability/metrics"
	"github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/pkg/db"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"go.uber.org/zap"
)

var platePattern = regexp.MustCompile(`^[A-Z0-9-]{3,10}$`)

type Service struct {
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	metrics *metrics.Metrics
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, m *metrics.Metrics) domain.Service {
	return &Service{
		log:     log.Named("vehicle.service"),
		repo:    repo,
		genID:   genID,
		metrics: m,
	}
}

// NormalizePlate uppercases and strips spaces from a raw plate value.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Vehicle, error) {
	plate := NormalizePlate(req.Plate)
	if !platePattern.MatchString(plate) {
		return nil, domain.ErrInvalidPlate
	}

	vehicleType := strings.ToUpper(strings.TrimSpace(req.Type))
	if vehicleType == "" {
		vehicleType = domain.TypeCar
	}
	if !domain.ValidType(vehicleType) {
		return nil, domain.ErrInvalidType
	}

	if _, err := s.repo.FindByPlate(ctx, plate); err == nil {
		return nil, domain.ErrPlateTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	vehicle := &domain.Vehicle{
		ID:         s.genID.Generate(),
		Plate:      plate,
		Brand:      strings.TrimSpace(req.Brand),
		Model:      strings.TrimSpace(req.Model),
		Color:      strings.TrimSpace(req.Color),
		Type:       vehicleType,
		IsElectric: req.IsElectric,
		OwnerName:  strings.TrimSpace(req.OwnerName),
		OwnerPhone: strings.TrimSpace(req.OwnerPhone),
		OwnerEmail: strings.TrimSpace(req.OwnerEmail),
		UserID:     req.UserID,
		OrgID:      req.OrgID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		// The unique index backs the existence check under
		// concurrent registration.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrPlateTaken
		}
		return nil, err
	}

	s.log.Info("vehicle registered", zap.String("plate", vehicle.Plate))
	return vehicle, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Vehicle, error) {
	return s.repo.FindByID(ctx, id)
}

// Search is the public plate lookup. An unknown plate is a regular
// result, not an error.
func (s *Service) Search(ctx context.Context, plate string) (*domain.SearchResult, error) {
	normalized := NormalizePlate(plate)
	if normalized == "" {
		return nil, domain.ErrInvalidPlate
	}

	vehicle, err := s.repo.FindByPlate(ctx, normalized)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.SearchResult{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}
	if !vehicle.Active {
		return &domain.SearchResult{Found: false}, nil
	}

	return &domain.SearchResult{
		Found: true,
		Vehicle: &domain.PublicVehicle{
			Plate:      vehicle.Plate,
			Brand:      vehicle.Brand,
			Model:      vehicle.Model,
			Color:      vehicle.Color,
			Type:       vehicle.Type,
			IsElectric: vehicle.IsElectric,
		},
	}, nil
}

func (s *Service) List(ctx context.Context, filter domain.Filter, p pagination.Pagination) ([]*domain.Vehicle, *pagination.PageInfo, error) {
	return s.repo.List(ctx, filter, p)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Vehicle, error) {
	fields := map[string]any{}
	if req.Brand != nil {
		fields["brand"] = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		fields["model"] = strings.TrimSpace(*req.Model)
	}
	if req.Color != nil {
		fields["color"] = strings.TrimSpace(*req.Color)
	}
	if req.Type != nil {
		vehicleType := strings.ToUpper(strings.TrimSpace(*req.Type))
		if !domain.ValidType(vehicleType) {
			return nil, domain.ErrInvalidType
		}
		fields["type"] = vehicleType
	}
	if req.IsElectric != nil {
		fields["is_electric"] = *req.IsElectric
	}
	if req.OwnerName != nil {
		fields["owner_name"] = strings.TrimSpace(*req.OwnerName)
	}
	if req.OwnerPhone != nil {
		fields["owner_phone"] = strings.TrimSpace(*req.OwnerPhone)
	}
	if req.OwnerEmail != nil {
		fields["owner_email"] = strings.TrimSpace(*req.OwnerEmail)
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

// ImportCSV loads vehicle rows from an uploaded CSV file. The first
// row is a header mapped case-insensitively; row failures are
// collected, never aborting the import.
func (s *Service) ImportCSV(ctx context.Context, orgID *snowflake.ID, r io.Reader) (*domain.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrInvalidInput)
	}
	columns := headerIndex(header)
	if _, ok := columns["plate"]; !ok {
		return nil, fmt.Errorf("%w: header must include plate", domain.ErrInvalidInput)
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
			Plate:      field(record, columns, "plate"),
			Brand:      field(record, columns, "brand"),
			Model:      field(record, columns, "model"),
			Color:      field(record, columns, "color"),
			Type:       field(record, columns, "type"),
			IsElectric: parseBool(field(record, columns, "electric")),
			OwnerName:  field(record, columns, "owner"),
			OwnerPhone: field(record, columns, "phone"),
			OwnerEmail: field(record, columns, "email"),
			OrgID:      orgID,
		}

		if _, err := s.Create(ctx, req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d (%s): %v", line, NormalizePlate(req.Plate), err))
			continue
		}
		result.Success++
	}

	if s.metrics != nil {
		s.metrics.RecordImportRows(ctx, "vehicles", result.Success, len(result.Errors))
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

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "si", "sí":
		return true
	default:
		return false
	}
}
