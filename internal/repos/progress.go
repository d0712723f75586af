package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/types"
)

type ProgressRepo interface {
	// Append records one observation. History accumulates; entries are
	// never updated or deleted.
	Append(ctx context.Context, tx *gorm.DB, row *types.ProgressEntry) error
	// AllForUser returns the full history, newest first.
	AllForUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.ProgressEntry, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) Append(ctx context.Context, tx *gorm.DB, row *types.ProgressEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *progressRepo) AllForUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.ProgressEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProgressEntry
	if userID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
