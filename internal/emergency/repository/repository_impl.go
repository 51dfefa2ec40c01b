package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/emergency/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Upsert(ctx context.Context, cfg *domain.Config) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "country"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"police", "ambulance", "fire", "active", "updated_at",
		}),
	}).Create(cfg).Error
}

func (r *repo) FindByCountry(ctx context.Context, country string) (*domain.Config, error) {
	var cfg domain.Config
	err := r.db.WithContext(ctx).Where("country = ?", strings.TrimSpace(country)).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) List(ctx context.Context, activeOnly bool) ([]*domain.Config, error) {
	query := r.db.WithContext(ctx).Model(&domain.Config{}).Order("country ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var configs []*domain.Config
	if err := query.Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Config{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
