package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Upsert(ctx context.Context, cfg *Config) error
	FindByCountry(ctx context.Context, country string) (*Config, error)
	List(ctx context.Context, activeOnly bool) ([]*Config, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type Service interface {
	// Upsert writes the numbers for a country, replacing any prior
	// row for the same country.
	Upsert(ctx context.Context, req UpsertRequest) (*Config, error)
	Get(ctx context.Context, country string) (*Config, error)
	List(ctx context.Context) ([]*Config, error)
	// ListActive is the public read used by the emergency page.
	ListActive(ctx context.Context) ([]*Config, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type UpsertRequest struct {
	Country   string
	Police    string
	Ambulance string
	Fire      string
	Active    *bool
}

var (
	ErrNotFound       = errors.New("emergency_config_not_found")
	ErrInvalidCountry = errors.New("invalid_country")
)
