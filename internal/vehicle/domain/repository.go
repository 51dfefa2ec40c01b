package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

// Filter narrows vehicle listings.
type Filter struct {
	UserID *snowflake.ID
	OrgID  *snowflake.ID
	Type   string
	Active *bool
	Query  string
}

type Repository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	FindByID(ctx context.Context, id snowflake.ID) (*Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*Vehicle, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Vehicle, *pagination.PageInfo, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}
