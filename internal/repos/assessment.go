package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/types"
)

type AssessmentRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.Assessment) error
	// AllByUser returns every assessment row, newest first.
	AllByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Assessment, error)
	// LatestForTopic returns the newest row for one topic, or (nil, nil)
	// when the topic was never assessed.
	LatestForTopic(ctx context.Context, tx *gorm.DB, userID string, topic types.Topic) (*types.Assessment, error)
	// LatestPerTopic reduces the history to the newest row per topic,
	// preserving newest-first order across topics.
	LatestPerTopic(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Assessment, error)
	// CountByUser counts all rows, duplicate topics included.
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	repoLog := baseLog.With("repo", "AssessmentRepo")
	return &assessmentRepo{db: db, log: repoLog}
}

func (r *assessmentRepo) Append(ctx context.Context, tx *gorm.DB, row *types.Assessment) error {
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

func (r *assessmentRepo) AllByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Assessment
	if userID == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRepo) LatestForTopic(ctx context.Context, tx *gorm.DB, userID string, topic types.Topic) (*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Assessment
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND topic = ?", userID, topic).
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

func (r *assessmentRepo) LatestPerTopic(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Assessment, error) {
	all, err := r.AllByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[types.Topic]bool, len(all))
	latest := make([]*types.Assessment, 0, len(all))
	for _, row := range all {
		if seen[row.Topic] {
			continue
		}
		seen[row.Topic] = true
		latest = append(latest, row)
	}
	return latest, nil
}

func (r *assessmentRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Assessment{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
