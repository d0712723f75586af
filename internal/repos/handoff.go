package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/types"
)

type HandoffRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.HandoffMessage) error
	// LatestTo returns the newest message addressed to the component for
	// the user regardless of sender, or (nil, nil) when the mailbox is
	// empty. Older rows stay in storage but are never returned.
	LatestTo(ctx context.Context, tx *gorm.DB, userID string, to types.Component) (*types.HandoffMessage, error)
}

type handoffRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHandoffRepo(db *gorm.DB, baseLog *logger.Logger) HandoffRepo {
	repoLog := baseLog.With("repo", "HandoffRepo")
	return &handoffRepo{db: db, log: repoLog}
}

func (r *handoffRepo) Append(ctx context.Context, tx *gorm.DB, row *types.HandoffMessage) error {
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

func (r *handoffRepo) LatestTo(ctx context.Context, tx *gorm.DB, userID string, to types.Component) (*types.HandoffMessage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HandoffMessage
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND to_component = ?", userID, to).
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
