package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/types"
)

type LearningPathRepo interface {
	// Append persists a new immutable path row; paths are never updated.
	Append(ctx context.Context, tx *gorm.DB, row *types.LearningPath) error
	// LatestForUser returns the current path, or (nil, nil) when the user
	// has none yet.
	LatestForUser(ctx context.Context, tx *gorm.DB, userID string) (*types.LearningPath, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	repoLog := baseLog.With("repo", "LearningPathRepo")
	return &learningPathRepo{db: db, log: repoLog}
}

func (r *learningPathRepo) Append(ctx context.Context, tx *gorm.DB, row *types.LearningPath) error {
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

func (r *learningPathRepo) LatestForUser(ctx context.Context, tx *gorm.DB, userID string) (*types.LearningPath, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LearningPath
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
