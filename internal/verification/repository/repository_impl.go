package repository

import (
	"context"
	"errors"

	"github.com/notifycar/notifycar/internal/verification/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Upsert(ctx context.Context, token *domain.Token) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identifier"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"code", "expires_at", "verified", "created_at",
		}),
	}).Create(token).Error
}

func (r *repo) FindByIdentifier(ctx context.Context, identifier string) (*domain.Token, error) {
	var token domain.Token
	err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repo) MarkVerified(ctx context.Context, identifier string) error {
	tx := r.db.WithContext(ctx).Model(&domain.Token{}).
		Where("identifier = ? AND verified = ?", identifier, false).
		Update("verified", true)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrAlreadyVerified
	}
	return nil
}
