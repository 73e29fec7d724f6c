package repository

import (
	"context"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.MembershipPlan) error
	GetByID(ctx context.Context, id uint) (*models.MembershipPlan, error)
	List(ctx context.Context, status string) ([]models.MembershipPlan, error)
	Update(ctx context.Context, plan *models.MembershipPlan) error
	UpdateStatus(ctx context.Context, ids []uint, status string) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *models.MembershipPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) List(ctx context.Context, status string) ([]models.MembershipPlan, error) {
	var plans []models.MembershipPlan
	q := r.db.WithContext(ctx).Order("price, id")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&plans).Error
	return plans, err
}

func (r *planRepository) Update(ctx context.Context, plan *models.MembershipPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *planRepository) UpdateStatus(ctx context.Context, ids []uint, status string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.MembershipPlan{}).Where("id IN ?", ids).Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *planRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.MembershipPlan{}, id)
	return res.RowsAffected, res.Error
}
