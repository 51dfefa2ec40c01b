package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Template, error)
	Get(ctx context.Context, id snowflake.ID) (*Template, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Template, *pagination.PageInfo, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Template, error)
	Delete(ctx context.Context, id snowflake.ID) error
	// Resolve assembles the candidate template set for composing a
	// message to a vehicle: global templates when the org opts in,
	// unioned with the org's own, both filtered by vehicle type and
	// the electric flag.
	Resolve(ctx context.Context, req ResolveRequest) ([]*Template, error)
}

type CreateRequest struct {
	Title       string
	Body        string
	Category    string
	VehicleType string
	OrgID       *snowflake.ID
}

// UpdateRequest carries editable fields. Nil means unchanged.
type UpdateRequest struct {
	Title       *string
	Body        *string
	Category    *string
	VehicleType *string
	Active      *bool
}

type ResolveRequest struct {
	VehicleType string
	IsElectric  bool
	OrgID       *snowflake.ID
	// UseGlobal mirrors the org's UseGlobalTemplates flag; true when
	// there is no org.
	UseGlobal bool
}

var (
	ErrNotFound           = errors.New("template_not_found")
	ErrInvalidTitle       = errors.New("invalid_title")
	ErrInvalidBody        = errors.New("invalid_body")
	ErrInvalidVehicleType = errors.New("invalid_vehicle_type")
	ErrInvalidInput       = errors.New("invalid_input")
)
