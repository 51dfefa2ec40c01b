package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Organization, error)
	Get(ctx context.Context, id snowflake.ID) (*Organization, error)
	GetByPublicToken(ctx context.Context, token string) (*Organization, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Organization, *pagination.PageInfo, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Organization, error)
	RotatePublicToken(ctx context.Context, id snowflake.ID) (*Organization, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type CreateRequest struct {
	Name               string
	Type               string
	MessageWrapper     string
	UseGlobalTemplates *bool
	ContactEmail       string
	ContactPhone       string
	// Optional operator account seeded alongside a new corporate org.
	OperatorEmail    string
	OperatorPassword string
	OperatorName     string
}

// UpdateRequest carries editable fields. Nil means unchanged.
type UpdateRequest struct {
	Name               *string
	Type               *string
	Active             *bool
	MessageWrapper     *string
	UseGlobalTemplates *bool
	ContactEmail       *string
	ContactPhone       *string
}

var (
	ErrNotFound     = errors.New("organization_not_found")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidType  = errors.New("invalid_type")
	ErrSlugTaken    = errors.New("slug_taken")
	ErrInvalidInput = errors.New("invalid_input")
)
