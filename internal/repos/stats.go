package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/types"
)

type StatsRepo interface {
	Aggregate(ctx context.Context, tx *gorm.DB) (*types.StoreStats, error)
}

type statsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatsRepo(db *gorm.DB, baseLog *logger.Logger) StatsRepo {
	repoLog := baseLog.With("repo", "StatsRepo")
	return &statsRepo{db: db, log: repoLog}
}

func (r *statsRepo) Aggregate(ctx context.Context, tx *gorm.DB) (*types.StoreStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	stats := &types.StoreStats{}
	counts := []struct {
		model any
		dest  *int64
	}{
		{&types.User{}, &stats.TotalUsers},
		{&types.Assessment{}, &stats.TotalAssessments},
		{&types.LearningPath{}, &stats.TotalLearningPaths},
		{&types.ProgressEntry{}, &stats.TotalProgressEntries},
		{&types.HandoffMessage{}, &stats.TotalAgentCommunications},
	}
	for _, c := range counts {
		if err := transaction.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
