package repositories

import (
	"context"
	"errors"

	"echosorter/internal/database"
	"echosorter/internal/logger"
	. "echosorter/internal/models"

	"gorm.io/gorm"
)

type SyncRunRepository interface {
	Create(ctx context.Context, tx *gorm.DB, run *SyncRun) error
	GetLatestForUser(ctx context.Context, userID string) (*SyncRun, error)
}

type syncRunRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSyncRunRepository(db database.DB) SyncRunRepository {
	return &syncRunRepository{
		db:  db,
		log: logger.New("syncRunRepository"),
	}
}

func (r *syncRunRepository) Create(ctx context.Context, tx *gorm.DB, run *SyncRun) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(run).Error; err != nil {
		return log.Err("failed to create sync run", err, "userID", run.UserID)
	}

	return nil
}

func (r *syncRunRepository) GetLatestForUser(ctx context.Context, userID string) (*SyncRun, error) {
	log := r.log.Function("GetLatestForUser")

	var run SyncRun
	err := r.db.SQLWithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get latest sync run", err, "userID", userID)
	}

	return &run, nil
}
