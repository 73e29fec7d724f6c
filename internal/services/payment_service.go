package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gym_manager/internal/metrics"
	"gym_manager/internal/models"
	"gym_manager/internal/repository"
)

type RecordPaymentInput struct {
	MemberID      uint
	Amount        float64
	PaymentDate   time.Time
	PaymentMethod string
	Description   string

	// UpdateMembership renews the member on PlanID from StartDate (or the
	// payment date) in the same transaction as the payment.
	UpdateMembership bool
	PlanID           uint
	StartDate        time.Time
}

type PaymentService interface {
	RecordPayment(ctx context.Context, adminID uint, in RecordPaymentInput) (*MembershipResult, error)
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
	GetMemberPayments(ctx context.Context, memberID uint) ([]models.Payment, error)
	GetPaymentsByDateRange(ctx context.Context, from, to time.Time) ([]models.Payment, error)
}

type paymentService struct {
	store *repository.Store
	now   func() time.Time
}

func NewPaymentService(store *repository.Store) PaymentService {
	return &paymentService{store: store, now: time.Now}
}

func (s *paymentService) RecordPayment(ctx context.Context, adminID uint, in RecordPaymentInput) (*MembershipResult, error) {
	switch {
	case in.MemberID == 0:
		return nil, validationErr("member_id", "is required")
	case in.Amount <= 0:
		return nil, validationErr("amount", "must be greater than zero")
	case in.PaymentDate.IsZero():
		return nil, validationErr("payment_date", "is required")
	case in.UpdateMembership && in.PlanID == 0:
		return nil, validationErr("plan_id", "is required when updating the membership")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = string(models.PaymentCash)
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, validationErr("payment_method", "is not supported")
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.StartDate.IsZero() {
		in.StartDate = in.PaymentDate
	}
	now := s.now()

	result := &MembershipResult{}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Members.GetByID(ctx, in.MemberID); err != nil {
			return translate(err, "load member", "member", in.MemberID)
		}
		payment := &models.Payment{
			MemberID:      in.MemberID,
			Amount:        roundMoney(in.Amount),
			PaymentDate:   models.DateOf(in.PaymentDate),
			PaymentMethod: in.PaymentMethod,
			Description:   in.Description,
			ReceiptNumber: ReceiptNumber(now),
			CreatedBy:     adminID,
		}
		details := fmt.Sprintf("Payment %s of %.2f", payment.ReceiptNumber, payment.Amount)
		if !in.UpdateMembership {
			if err := tx.Payments.Create(ctx, payment); err != nil {
				return err
			}
			result.Payment = payment
		} else {
			plan, err := loadActivePlan(ctx, tx, in.PlanID)
			if err != nil {
				return err
			}
			granted, err := grantMembership(ctx, tx, in.MemberID, plan, in.StartDate, payment)
			if err != nil {
				return err
			}
			result.Payment, result.History = granted.Payment, granted.History
			details += fmt.Sprintf(", renewed on %s until %s", plan.Name, granted.History.EndDate.Format("2006-01-02"))
		}

		member, err := tx.Members.GetByID(ctx, in.MemberID)
		if err != nil {
			return err
		}
		result.Member = member
		return tx.Activity.Create(ctx, &models.ActivityLog{
			AdminID:    adminID,
			Action:     models.ActionPaymentRecorded,
			EntityType: "payment",
			EntityID:   payment.ID,
			Details:    details,
		})
	})
	if err != nil {
		return nil, translate(err, "record payment", "member", in.MemberID)
	}
	metrics.Payments.Inc()
	return result, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.store.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "load payment", "payment", id)
	}
	return payment, nil
}

func (s *paymentService) GetMemberPayments(ctx context.Context, memberID uint) ([]models.Payment, error) {
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		return nil, translate(err, "load member", "member", memberID)
	}
	payments, err := s.store.Payments.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, translate(err, "load payments", "payment", nil)
	}
	return payments, nil
}

// GetPaymentsByDateRange returns payments dated within [from, to], both
// calendar days inclusive.
func (s *paymentService) GetPaymentsByDateRange(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	if from.IsZero() || to.IsZero() {
		return nil, validationErr("from", "from and to are required")
	}
	from, to = models.DateOf(from), models.DateOf(to)
	if to.Before(from) {
		return nil, validationErr("to", "must not be before from")
	}
	payments, err := s.store.Payments.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, translate(err, "load payments", "payment", nil)
	}
	return payments, nil
}
