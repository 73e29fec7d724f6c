package repository

import (
	"context"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uint) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) GetByEntity(ctx context.Context, entityType string, entityID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).Where("entity_type = ? AND entity_id = ?", entityType, entityID).Order("id").Find(&entries).Error
	return entries, err
}
