package repository

import (
	"context"
	"errors"

	"github.com/notifycar/notifycar/internal/settings/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context) (*domain.SystemSetting, error) {
	var setting domain.SystemSetting
	err := r.db.WithContext(ctx).Where("id = ?", domain.DefaultID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repo) Save(ctx context.Context, setting *domain.SystemSetting) error {
	setting.ID = domain.DefaultID
	return r.db.WithContext(ctx).Save(setting).Error
}

func (r *repo) UpdateFields(ctx context.Context, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.SystemSetting{}).Where("id = ?", domain.DefaultID).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
