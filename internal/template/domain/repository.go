package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

// Filter narrows template listings. GlobalOnly selects templates with
// no organization.
type Filter struct {
	OrgID       *snowflake.ID
	GlobalOnly  bool
	VehicleType string
	Active      *bool
	Category    string
}

type Repository interface {
	Create(ctx context.Context, template *Template) error
	FindByID(ctx context.Context, id snowflake.ID) (*Template, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Template, *pagination.PageInfo, error)
	// ListActiveByTypes returns active templates matching any of the
	// given applicability values, scoped to one org or to the global
	// set when orgID is nil.
	ListActiveByTypes(ctx context.Context, orgID *snowflake.ID, types []string) ([]*Template, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}
