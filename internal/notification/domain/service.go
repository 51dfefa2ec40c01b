package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/pkg/db/pagination"
)

// Filter narrows notification listings.
type Filter struct {
	VehicleID *snowflake.ID
	OrgID     *snowflake.ID
	SenderID  *snowflake.ID
	Plate     string
	Status    string
}

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByID(ctx context.Context, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Notification, *pagination.PageInfo, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status string) error
}

type Service interface {
	Send(ctx context.Context, req SendRequest) (*Notification, error)
	Get(ctx context.Context, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, filter Filter, p pagination.Pagination) ([]*Notification, *pagination.PageInfo, error)
}

type SendRequest struct {
	Plate       string
	Message     string
	TemplateID  *snowflake.ID
	OrgID       *snowflake.ID
	SenderID    *snowflake.ID
	SenderName  string
	SenderPhone string
}

var (
	ErrNotFound       = errors.New("notification_not_found")
	ErrVehicleUnknown = errors.New("vehicle_unknown")
	ErrEmptyMessage   = errors.New("empty_message")
	ErrInvalidInput   = errors.New("invalid_input")
)
