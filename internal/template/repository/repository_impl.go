package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/template/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, template *domain.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Template, error) {
	var template domain.Template
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *repo) List(ctx context.Context, filter domain.Filter, p pagination.Pagination) ([]*domain.Template, *pagination.PageInfo, error) {
	limit := p.PageSize
	if limit <= 0 {
		limit = 50
	}

	query := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Template{}), filter).
		Order("id DESC").
		Limit(limit + 1)

	if p.PageToken != "" {
		cursor, err := pagination.DecodeCursor(p.PageToken)
		if err != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		lastID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		query = query.Where("id < ?", lastID)
	}

	var templates []*domain.Template
	if err := query.Find(&templates).Error; err != nil {
		return nil, nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(templates, limit, func(tpl *domain.Template) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: tpl.ID.String()})
		return token
	})
	if len(templates) > limit {
		templates = templates[:limit]
	}

	return templates, pageInfo, nil
}

func (r *repo) ListActiveByTypes(ctx context.Context, orgID *snowflake.ID, types []string) ([]*domain.Template, error) {
	query := r.db.WithContext(ctx).Model(&domain.Template{}).
		Where("active = ?", true).
		Where("vehicle_type IN ?", types).
		Order("id DESC")
	if orgID == nil {
		query = query.Where("org_id IS NULL")
	} else {
		query = query.Where("org_id = ?", *orgID)
	}

	var templates []*domain.Template
	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repo) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Template{}), filter).Count(&count).Error
	return count, err
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Template{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Template{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) applyFilter(query *gorm.DB, filter domain.Filter) *gorm.DB {
	if filter.GlobalOnly {
		query = query.Where("org_id IS NULL")
	} else if filter.OrgID != nil {
		query = query.Where("org_id = ?", *filter.OrgID)
	}
	if filter.VehicleType != "" {
		query = query.Where("vehicle_type = ?", filter.VehicleType)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	return query
}
