package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/notification/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repo) List(ctx context.Context, filter domain.Filter, p pagination.Pagination) ([]*domain.Notification, *pagination.PageInfo, error) {
	limit := p.PageSize
	if limit <= 0 {
		limit = 50
	}

	query := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Notification{}), filter).
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

	var notifications []*domain.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(notifications, limit, func(n *domain.Notification) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: n.ID.String()})
		return token
	})
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}

	return notifications, pageInfo, nil
}

func (r *repo) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Notification{}), filter).Count(&count).Error
	return count, err
}

func (r *repo) UpdateStatus(ctx context.Context, id snowflake.ID, status string) error {
	tx := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) applyFilter(query *gorm.DB, filter domain.Filter) *gorm.DB {
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.OrgID != nil {
		query = query.Where("org_id = ?", *filter.OrgID)
	}
	if filter.SenderID != nil {
		query = query.Where("sender_id = ?", *filter.SenderID)
	}
	if plate := strings.ToUpper(strings.TrimSpace(filter.Plate)); plate != "" {
		query = query.Where("plate = ?", plate)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}
