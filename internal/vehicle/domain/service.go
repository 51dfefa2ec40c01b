package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Vehicle, error)
	Get(ctx context.Context, id snowflake.ID) (*Vehicle, error)
	Search(ctx context.Context, plate string) (*SearchResult, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Vehicle, *pagination.PageInfo, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Vehicle, error)
	Delete(ctx context.Context, id snowflake.ID) error
	ImportCSV(ctx context.Context, orgID *snowflake.ID, r io.Reader) (*ImportResult, error)
}

type CreateRequest struct {
	Plate      string
	Brand      string
	Model      string
	Color      string
	Type       string
	IsElectric bool
	OwnerName  string
	OwnerPhone string
	OwnerEmail string
	UserID     *snowflake.ID
	OrgID      *snowflake.ID
}

// UpdateRequest carries editable fields. Nil means unchanged. The
// plate itself is immutable once registered.
type UpdateRequest struct {
	Brand      *string
	Model      *string
	Color      *string
	Type       *string
	IsElectric *bool
	OwnerName  *string
	OwnerPhone *string
	OwnerEmail *string
	Active     *bool
}

// SearchResult is the public plate-lookup shape.
type SearchResult struct {
	Found   bool           `json:"found"`
	Vehicle *PublicVehicle `json:"vehicle,omitempty"`
}

// PublicVehicle is the subset of vehicle fields exposed to
// unauthenticated plate search. Owner contact stays private.
type PublicVehicle struct {
	Plate      string `json:"plate"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Color      string `json:"color"`
	Type       string `json:"type"`
	IsElectric bool   `json:"is_electric"`
}

// ImportResult reports the outcome of a bulk CSV import.
type ImportResult struct {
	Success int      `json:"success"`
	Errors  []string `json:"errors"`
}

var (
	ErrNotFound     = errors.New("vehicle_not_found")
	ErrPlateTaken   = errors.New("plate_taken")
	ErrInvalidPlate = errors.New("invalid_plate")
	ErrInvalidType  = errors.New("invalid_vehicle_type")
	ErrInvalidInput = errors.New("invalid_input")
)
