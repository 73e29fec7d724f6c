package repository

import (
	"context"
	"time"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ExistsSince(ctx context.Context, memberID uint, notificationType string, since time.Time) (bool, error)
	List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uint) (int64, error)
	DeleteByMemberID(ctx context.Context, memberID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ExistsSince(ctx context.Context, memberID uint, notificationType string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("member_id = ? AND type = ? AND created_at >= ?", memberID, notificationType, since).
		Count(&count).Error
	return count > 0, err
}

func (r *notificationRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) DeleteByMemberID(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&models.Notification{}).Error
}
