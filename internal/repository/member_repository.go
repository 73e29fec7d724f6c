package repository

import (
	"context"
	"time"

	"gym_manager/internal/models"

	"gorm.io/gorm"
)

// MemberFilter composes the listing predicates used by the members page and
// by bulk SMS targeting. Zero values are ignored.
type MemberFilter struct {
	Status             string
	PlanID             *uint
	Search             string
	ExpiringWithinDays int
	Now                time.Time
	Limit              int
	Offset             int
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByCode(ctx context.Context, code string) (*models.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]models.Member, error)
	Count(ctx context.Context, filter MemberFilter) (int64, error)
	UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	SetMemberCode(ctx context.Context, id uint, code string) error
	UpdateStatus(ctx context.Context, id uint, status string) (int64, error)
	ApplyMembership(ctx context.Context, id, planID uint, start, end time.Time) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
	CountByPlan(ctx context.Context, planID uint) (int64, error)
	ListActiveEndingBefore(ctx context.Context, cutoff time.Time) ([]models.Member, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Omit("MembershipPlan").Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Preload("MembershipPlan").First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByCode(ctx context.Context, code string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Preload("MembershipPlan").Where("member_code = ?", code).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) List(ctx context.Context, filter MemberFilter) ([]models.Member, error) {
	var members []models.Member
	q := applyMemberFilter(r.db.WithContext(ctx).Model(&models.Member{}), filter).
		Preload("MembershipPlan").
		Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&members).Error
	return members, err
}

func (r *memberRepository) Count(ctx context.Context, filter MemberFilter) (int64, error) {
	var count int64
	err := applyMemberFilter(r.db.WithContext(ctx).Model(&models.Member{}), filter).Count(&count).Error
	return count, err
}

func applyMemberFilter(q *gorm.DB, f MemberFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PlanID != nil {
		q = q.Where("membership_plan_id = ?", *f.PlanID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ? OR member_code LIKE ? OR phone LIKE ?", like, like, like, like)
	}
	if f.ExpiringWithinDays > 0 {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		from := models.DateOf(now)
		q = q.Where("membership_end >= ? AND membership_end <= ?", from, from.AddDate(0, 0, f.ExpiringWithinDays))
	}
	return q
}

func (r *memberRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *memberRepository) SetMemberCode(ctx context.Context, id uint, code string) error {
	return r.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Update("member_code", code).Error
}

func (r *memberRepository) UpdateStatus(ctx context.Context, id uint, status string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *memberRepository) ApplyMembership(ctx context.Context, id, planID uint, start, end time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Updates(map[string]interface{}{
		"membership_plan_id": planID,
		"membership_start":   start,
		"membership_end":     end,
		"status":             string(models.MemberActive),
	})
	return res.RowsAffected, res.Error
}

func (r *memberRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Member{}, id)
	return res.RowsAffected, res.Error
}

func (r *memberRepository) CountByPlan(ctx context.Context, planID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("membership_plan_id = ?", planID).Count(&count).Error
	return count, err
}

func (r *memberRepository) ListActiveEndingBefore(ctx context.Context, cutoff time.Time) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Preload("MembershipPlan").
		Where("status = ? AND membership_end IS NOT NULL AND membership_end < ?", string(models.MemberActive), cutoff).
		Order("membership_end").
		Find(&members).Error
	return members, err
}
