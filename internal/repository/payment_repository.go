package repository

import (
	"context"
	"time"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByMemberID(ctx context.Context, memberID uint) ([]models.Payment, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Payment, error)
	DeleteByMemberID(ctx context.Context, memberID uint) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByMemberID(ctx context.Context, memberID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).Order("payment_date DESC, id DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("payment_date BETWEEN ? AND ?", startDate, endDate).
		Order("payment_date DESC, id DESC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) DeleteByMemberID(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&models.Payment{}).Error
}
