package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gym_manager/internal/models"
	"gym_manager/internal/repository"
)

// Cache is the JSON key/value store behind the active plan list;
// *redis.Client satisfies it.
type Cache interface {
	SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetTempData(ctx context.Context, key string, dest interface{}) error
	DeleteTempData(ctx context.Context, key string) error
}

const activePlansCacheKey = "plans:active"

type PlanInput struct {
	Name         string
	DurationDays int
	Price        float64
	Description  string
	Features     []string
	Status       string
}

type BulkDeleteResult struct {
	Deleted []uint `json:"deleted"`
	// Skipped maps plan id to the reason it was kept.
	Skipped map[uint]string `json:"skipped"`
}

type PlanService interface {
	CreatePlan(ctx context.Context, in PlanInput) (*models.MembershipPlan, error)
	UpdatePlan(ctx context.Context, id uint, in PlanInput) (*models.MembershipPlan, error)
	GetPlan(ctx context.Context, id uint) (*models.MembershipPlan, error)
	ListPlans(ctx context.Context, status string) ([]models.MembershipPlan, error)
	ListActivePlans(ctx context.Context) ([]models.MembershipPlan, error)
	DuplicatePlan(ctx context.Context, id uint) (*models.MembershipPlan, error)
	DeletePlan(ctx context.Context, id uint) error
	BulkSetStatus(ctx context.Context, ids []uint, status string) (int64, error)
	BulkDelete(ctx context.Context, ids []uint) (*BulkDeleteResult, error)
}

type planService struct {
	store    *repository.Store
	cache    Cache
	cacheTTL time.Duration
}

func NewPlanService(store *repository.Store, cache Cache, cacheTTL time.Duration) PlanService {
	return &planService{store: store, cache: cache, cacheTTL: cacheTTL}
}

func validatePlan(in *PlanInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validationErr("name", "is required")
	}
	if in.DurationDays <= 0 {
		return validationErr("duration_days", "must be greater than zero")
	}
	if in.Price < 0 {
		return validationErr("price", "must not be negative")
	}
	if in.Status == "" {
		in.Status = string(models.PlanActive)
	}
	if !models.ValidPlanStatus(in.Status) {
		return validationErr("status", "must be active or inactive")
	}
	return nil
}

func (s *planService) CreatePlan(ctx context.Context, in PlanInput) (*models.MembershipPlan, error) {
	if err := validatePlan(&in); err != nil {
		return nil, err
	}
	plan := &models.MembershipPlan{
		Name:         in.Name,
		DurationDays: in.DurationDays,
		Price:        roundMoney(in.Price),
		Description:  in.Description,
		Features:     in.Features,
		Status:       in.Status,
	}
	if err := s.store.Plans.Create(ctx, plan); err != nil {
		return nil, translate(err, "create membership plan", "membership plan", nil)
	}
	s.invalidate(ctx)
	return plan, nil
}

// UpdatePlan never touches existing members: their dates were fixed when the
// plan was granted.
func (s *planService) UpdatePlan(ctx context.Context, id uint, in PlanInput) (*models.MembershipPlan, error) {
	if err := validatePlan(&in); err != nil {
		return nil, err
	}
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Name = in.Name
	plan.DurationDays = in.DurationDays
	plan.Price = roundMoney(in.Price)
	plan.Description = in.Description
	plan.Features = in.Features
	plan.Status = in.Status
	if err := s.store.Plans.Update(ctx, plan); err != nil {
		return nil, translate(err, "update membership plan", "membership plan", id)
	}
	s.invalidate(ctx)
	return plan, nil
}

func (s *planService) GetPlan(ctx context.Context, id uint) (*models.MembershipPlan, error) {
	plan, err := s.store.Plans.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "load membership plan", "membership plan", id)
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, status string) ([]models.MembershipPlan, error) {
	if status != "" && !models.ValidPlanStatus(status) {
		return nil, validationErr("status", "must be active or inactive")
	}
	plans, err := s.store.Plans.List(ctx, status)
	if err != nil {
		return nil, translate(err, "list membership plans", "membership plan", nil)
	}
	return plans, nil
}

// ListActivePlans backs the enrollment form. Cache errors fall through to the
// database.
func (s *planService) ListActivePlans(ctx context.Context) ([]models.MembershipPlan, error) {
	if s.cache != nil {
		var cached []models.MembershipPlan
		if err := s.cache.GetTempData(ctx, activePlansCacheKey, &cached); err == nil {
			return cached, nil
		}
	}
	plans, err := s.ListPlans(ctx, string(models.PlanActive))
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTempData(ctx, activePlansCacheKey, plans, s.cacheTTL); err != nil {
			log.Printf("Failed to cache active plans: %v", err)
		}
	}
	return plans, nil
}

func (s *planService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteTempData(context.WithoutCancel(ctx), activePlansCacheKey); err != nil {
		log.Printf("Failed to invalidate plan cache: %v", err)
	}
}

// DuplicatePlan copies a plan as an inactive "<name> (Copy)" so staff can edit
// it before it shows up on the enrollment form.
func (s *planService) DuplicatePlan(ctx context.Context, id uint) (*models.MembershipPlan, error) {
	source, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	features := append([]string(nil), source.Features...)
	return s.CreatePlan(ctx, PlanInput{
		Name:         source.Name + " (Copy)",
		DurationDays: source.DurationDays,
		Price:        source.Price,
		Description:  source.Description,
		Features:     features,
		Status:       string(models.PlanInactive),
	})
}

func (s *planService) DeletePlan(ctx context.Context, id uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		return deletePlanTx(ctx, tx, id)
	})
	if err != nil {
		return translate(err, "delete membership plan", "membership plan", id)
	}
	s.invalidate(ctx)
	return nil
}

func deletePlanTx(ctx context.Context, tx *repository.Store, id uint) error {
	inUse, err := tx.Members.CountByPlan(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return &InvalidStateError{
			Entity:  "membership plan",
			Message: fmt.Sprintf("plan is assigned to %d member(s); deactivate it instead", inUse),
		}
	}
	rows, err := tx.Plans.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return &NotFoundError{Entity: "membership plan", ID: id}
	}
	return nil
}

func (s *planService) BulkSetStatus(ctx context.Context, ids []uint, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, validationErr("ids", "at least one plan id is required")
	}
	if !models.ValidPlanStatus(status) {
		return 0, validationErr("status", "must be active or inactive")
	}
	rows, err := s.store.Plans.UpdateStatus(ctx, ids, status)
	if err != nil {
		return 0, translate(err, "update membership plans", "membership plan", nil)
	}
	s.invalidate(ctx)
	return rows, nil
}

// BulkDelete removes each unused plan in its own transaction and reports the
// ones it kept, so one plan in use does not block the rest.
func (s *planService) BulkDelete(ctx context.Context, ids []uint) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, validationErr("ids", "at least one plan id is required")
	}
	result := &BulkDeleteResult{Deleted: []uint{}, Skipped: map[uint]string{}}
	for _, id := range ids {
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			return deletePlanTx(ctx, tx, id)
		})
		if err == nil {
			result.Deleted = append(result.Deleted, id)
			continue
		}
		err = translate(err, "delete membership plan", "membership plan", id)
		var persistence *PersistenceError
		if errors.As(err, &persistence) {
			return nil, err
		}
		result.Skipped[id] = err.Error()
	}
	if len(result.Deleted) > 0 {
		s.invalidate(ctx)
	}
	return result, nil
}
