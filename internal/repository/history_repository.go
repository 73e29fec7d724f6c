package repository

import (
	"context"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

// HistoryRepository has no update method: membership history is append-only.
type HistoryRepository interface {
	Create(ctx context.Context, entry *models.MembershipHistory) error
	GetByMemberID(ctx context.Context, memberID uint) ([]models.MembershipHistory, error)
	DeleteByMemberID(ctx context.Context, memberID uint) error
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, entry *models.MembershipHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepository) GetByMemberID(ctx context.Context, memberID uint) ([]models.MembershipHistory, error) {
	var entries []models.MembershipHistory
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).Order("start_date DESC, id DESC").Find(&entries).Error
	return entries, err
}

func (r *historyRepository) DeleteByMemberID(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&models.MembershipHistory{}).Error
}
