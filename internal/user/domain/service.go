package domain

import (
	"context"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Create(ctx context.Context, req CreateRequest) (*User, error)
	Get(ctx context.Context, id snowflake.ID) (*User, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*User, *pagination.PageInfo, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*User, error)
	UpdateProfile(ctx context.Context, id snowflake.ID, req ProfileRequest) (*User, error)
	Delete(ctx context.Context, id snowflake.ID) error
	ImportCSV(ctx context.Context, orgID *snowflake.ID, r io.Reader) (*ImportResult, error)
}

// RegisterRequest is the public self-registration payload. Accounts
// created this way are always drivers.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// CreateRequest is the admin account-creation payload.
type CreateRequest struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
	OrgID    *snowflake.ID
}

// UpdateRequest carries admin-editable fields. Nil means unchanged.
type UpdateRequest struct {
	Name     *string
	Phone    *string
	Role     *string
	OrgID    *snowflake.ID
	ClearOrg bool
	Active   *bool
}

// ProfileRequest carries self-service profile fields.
type ProfileRequest struct {
	Name  *string
	Phone *string
}

// ImportResult reports the outcome of a bulk CSV import. Row failures
// are data, not protocol errors.
type ImportResult struct {
	Success int      `json:"success"`
	Errors  []string `json:"errors"`
}
