package repository

import (
	"context"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type NotificationLogFilter struct {
	MemberID *uint
	Type     string
	Status   string
	Limit    int
}

type NotificationLogRepository interface {
	Create(ctx context.Context, entry *models.NotificationLog) error
	List(ctx context.Context, filter NotificationLogFilter) ([]models.NotificationLog, error)
	DeleteByMemberID(ctx context.Context, memberID uint) error
}

type notificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, entry *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *notificationLogRepository) List(ctx context.Context, filter NotificationLogFilter) ([]models.NotificationLog, error) {
	var entries []models.NotificationLog
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if filter.MemberID != nil {
		q = q.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *notificationLogRepository) DeleteByMemberID(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&models.NotificationLog{}).Error
}
