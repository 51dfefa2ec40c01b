package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

// Filter narrows user listings.
type Filter struct {
	Role   string
	OrgID  *snowflake.ID
	Active *bool
	Query  string
}

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*User, *pagination.PageInfo, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
}
