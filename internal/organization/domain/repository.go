package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

// Filter narrows organization listings.
type Filter struct {
	Type   string
	Active *bool
	Query  string
}

type Repository interface {
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	FindByPublicToken(ctx context.Context, token string) (*Organization, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Organization, *pagination.PageInfo, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}
