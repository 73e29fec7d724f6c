package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gym_manager/internal/metrics"
	"gym_manager/internal/models"
	"gym_manager/internal/repository"
)

// Locker serialises batch jobs across processes; *redis.Client satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, name, token string) error
}

const (
	expiryLockName = "expiry-notifications"
	expiryLockTTL  = 10 * time.Minute
	expiringWindow = 7
)

type EnrollInput struct {
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	DateOfBirth           *time.Time
	Gender                string
	Address               string
	EmergencyContactName  string
	EmergencyContactPhone string
	Notes                 string
	Status                string

	PlanID uint
	// Zero means today.
	StartDate time.Time
	// Zero means the plan price. No payment is recorded for a free plan.
	PaymentAmount float64
	PaymentMethod string
}

type RenewInput struct {
	PlanID        uint
	StartDate     time.Time
	PaymentAmount float64
	PaymentMethod string
	Description   string
}

type ProfileInput struct {
	FirstName             *string
	LastName              *string
	Email                 *string
	Phone                 *string
	DateOfBirth           *time.Time
	Gender                *string
	Address               *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	Notes                 *string
}

// MembershipResult is what enrollment and renewal produce together.
type MembershipResult struct {
	Member  *models.Member            `json:"member"`
	Payment *models.Payment           `json:"payment,omitempty"`
	History *models.MembershipHistory `json:"history"`
}

type ExpiryRunResult struct {
	Expired  int  `json:"expired"`
	Expiring int  `json:"expiring"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed"`
	Locked   bool `json:"locked"`
}

type MembershipService interface {
	Enroll(ctx context.Context, adminID uint, in EnrollInput) (*MembershipResult, error)
	Renew(ctx context.Context, adminID, memberID uint, in RenewInput) (*MembershipResult, error)
	SetStatus(ctx context.Context, memberID uint, status string) error
	Delete(ctx context.Context, adminID, memberID uint) error
	ComputeExpiryNotifications(ctx context.Context, now time.Time) (*ExpiryRunResult, error)

	GetMember(ctx context.Context, id uint) (*models.Member, error)
	GetMemberByCode(ctx context.Context, code string) (*models.Member, error)
	ListMembers(ctx context.Context, filter repository.MemberFilter) ([]models.Member, int64, error)
	UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.Member, error)
	GetHistory(ctx context.Context, memberID uint) ([]models.MembershipHistory, error)
}

type membershipService struct {
	store      *repository.Store
	notifier   NotificationService
	locker     Locker
	codePrefix string
	now        func() time.Time
}

func NewMembershipService(store *repository.Store, notifier NotificationService, locker Locker, codePrefix string) MembershipService {
	return &membershipService{
		store:      store,
		notifier:   notifier,
		locker:     locker,
		codePrefix: codePrefix,
		now:        time.Now,
	}
}

func (s *membershipService) Enroll(ctx context.Context, adminID uint, in EnrollInput) (*MembershipResult, error) {
	if err := validateEnroll(&in); err != nil {
		return nil, err
	}
	now := s.now()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}

	member := &models.Member{
		// Placeholder until the datastore issues an id; replaced below in the
		// same transaction.
		MemberCode:            "pending-" + randomHex(20),
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		Email:                 in.Email,
		Phone:                 in.Phone,
		DateOfBirth:           in.DateOfBirth,
		Gender:                in.Gender,
		Address:               in.Address,
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
		Notes:                 in.Notes,
		Status:                in.Status,
		CreatedBy:             adminID,
	}

	var result *MembershipResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		plan, err := loadActivePlan(ctx, tx, in.PlanID)
		if err != nil {
			return err
		}
		if err := tx.Members.Create(ctx, member); err != nil {
			return err
		}
		member.MemberCode = MemberCode(s.codePrefix, member.ID)
		if err := tx.Members.SetMemberCode(ctx, member.ID, member.MemberCode); err != nil {
			return err
		}

		amount := in.PaymentAmount
		if amount == 0 {
			amount = plan.Price
		}
		payment := membershipPayment(adminID, member.ID, amount, in.PaymentMethod, "Membership enrollment: "+plan.Name, now)
		result, err = grantMembership(ctx, tx, member.ID, plan, in.StartDate, payment)
		if err != nil {
			return err
		}
		// An enrollment with an explicit non-active status keeps it.
		if in.Status != string(models.MemberActive) {
			if _, err := tx.Members.UpdateStatus(ctx, member.ID, in.Status); err != nil {
				return err
			}
		}
		result.Member, err = tx.Members.GetByID(ctx, member.ID)
		if err != nil {
			return err
		}
		return tx.Activity.Create(ctx, &models.ActivityLog{
			AdminID:    adminID,
			Action:     models.ActionMemberEnrolled,
			EntityType: "member",
			EntityID:   member.ID,
			Details:    fmt.Sprintf("Enrolled %s (%s) on %s", member.FullName(), member.MemberCode, plan.Name),
		})
	})
	if err != nil {
		return nil, translate(err, "enroll member", "membership plan", in.PlanID)
	}

	metrics.Enrollments.Inc()
	if result.Payment != nil {
		metrics.Payments.Inc()
	}
	log.Printf("Enrolled member %s (id=%d) by admin %d", result.Member.MemberCode, result.Member.ID, adminID)

	// Post-commit and best effort: a failed welcome SMS never undoes the
	// enrollment, it only leaves a failed notification log. Pending and
	// inactive enrollments get no welcome.
	if s.notifier != nil && result.Member.Status == string(models.MemberActive) {
		s.notifier.SendWelcome(ctx, result.Member, result.Member.MembershipPlan, adminID)
	}
	return result, nil
}

func validateEnroll(in *EnrollInput) error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	switch {
	case in.FirstName == "":
		return validationErr("first_name", "is required")
	case in.LastName == "":
		return validationErr("last_name", "is required")
	case in.Phone == "":
		return validationErr("phone", "is required")
	case in.PlanID == 0:
		return validationErr("plan_id", "is required")
	case in.PaymentAmount < 0:
		return validationErr("payment_amount", "must not be negative")
	}
	if in.Status == "" {
		in.Status = string(models.MemberActive)
	}
	if !models.ValidMemberStatus(in.Status) {
		return validationErr("status", "must be active, inactive or pending")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = string(models.PaymentCash)
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return validationErr("payment_method", "is not supported")
	}
	return nil
}

func loadActivePlan(ctx context.Context, tx *repository.Store, planID uint) (*models.MembershipPlan, error) {
	plan, err := tx.Plans.GetByID(ctx, planID)
	if err != nil {
		return nil, translate(err, "load membership plan", "membership plan", planID)
	}
	if plan.Status != string(models.PlanActive) {
		return nil, &InvalidStateError{Entity: "membership plan", Message: fmt.Sprintf("%s is inactive", plan.Name)}
	}
	return plan, nil
}

// grantMembership stores payment when it is new, points the member at plan
// for [start, start+duration) and appends the history row linked to payment.
// Enrollment, renewal and payment-with-renewal all go through here inside
// their own transaction.
func grantMembership(ctx context.Context, tx *repository.Store, memberID uint, plan *models.MembershipPlan, start time.Time, payment *models.Payment) (*MembershipResult, error) {
	result := &MembershipResult{Payment: payment}
	start = models.DateOf(start)
	end := models.MembershipEnd(start, plan.DurationDays)

	var paymentID *uint
	if payment != nil {
		if payment.ID == 0 {
			if err := tx.Payments.Create(ctx, payment); err != nil {
				return nil, err
			}
		}
		paymentID = &payment.ID
	}

	rows, err := tx.Members.ApplyMembership(ctx, memberID, plan.ID, start, end)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, &NotFoundError{Entity: "member", ID: memberID}
	}

	history := &models.MembershipHistory{
		MemberID:  memberID,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   end,
		PaymentID: paymentID,
		Status:    string(models.MemberActive),
	}
	if err := tx.History.Create(ctx, history); err != nil {
		return nil, err
	}
	result.History = history
	return result, nil
}

// membershipPayment returns nil for a zero amount so free plans carry no
// payment row.
func membershipPayment(adminID, memberID uint, amount float64, method, description string, now time.Time) *models.Payment {
	if amount <= 0 {
		return nil
	}
	return &models.Payment{
		MemberID:      memberID,
		Amount:        roundMoney(amount),
		PaymentDate:   models.DateOf(now),
		PaymentMethod: method,
		Description:   description,
		ReceiptNumber: ReceiptNumber(now),
		CreatedBy:     adminID,
	}
}

func (s *membershipService) Renew(ctx context.Context, adminID, memberID uint, in RenewInput) (*MembershipResult, error) {
	if in.PlanID == 0 {
		return nil, validationErr("plan_id", "is required")
	}
	if in.PaymentAmount < 0 {
		return nil, validationErr("payment_amount", "must not be negative")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = string(models.PaymentCash)
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, validationErr("payment_method", "is not supported")
	}
	now := s.now()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}

	var result *MembershipResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Members.GetByID(ctx, memberID); err != nil {
			return translate(err, "load member", "member", memberID)
		}
		plan, err := loadActivePlan(ctx, tx, in.PlanID)
		if err != nil {
			return err
		}
		amount := in.PaymentAmount
		if amount == 0 {
			amount = plan.Price
		}
		description := in.Description
		if description == "" {
			description = "Membership renewal: " + plan.Name
		}
		payment := membershipPayment(adminID, memberID, amount, in.PaymentMethod, description, now)
		result, err = grantMembership(ctx, tx, memberID, plan, in.StartDate, payment)
		if err != nil {
			return err
		}
		if result.Member, err = tx.Members.GetByID(ctx, memberID); err != nil {
			return err
		}
		return tx.Activity.Create(ctx, &models.ActivityLog{
			AdminID:    adminID,
			Action:     models.ActionMemberRenewed,
			EntityType: "member",
			EntityID:   memberID,
			Details:    fmt.Sprintf("Renewed on %s until %s", plan.Name, result.History.EndDate.Format("2006-01-02")),
		})
	})
	if err != nil {
		return nil, translate(err, "renew membership", "member", memberID)
	}
	if result.Payment != nil {
		metrics.Payments.Inc()
	}
	return result, nil
}

func (s *membershipService) SetStatus(ctx context.Context, memberID uint, status string) error {
	if !models.ValidMemberStatus(status) {
		return validationErr("status", "must be active, inactive or pending")
	}
	rows, err := s.store.Members.UpdateStatus(ctx, memberID, status)
	if err != nil {
		return translate(err, "update member status", "member", memberID)
	}
	if rows == 0 {
		return &NotFoundError{Entity: "member", ID: memberID}
	}
	return nil
}

// Delete removes the member with every dependent row in one transaction.
// Cafe orders keep their member_id for sales reporting.
func (s *membershipService) Delete(ctx context.Context, adminID, memberID uint) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		member, err := tx.Members.GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if err := tx.Notifications.DeleteByMemberID(ctx, memberID); err != nil {
			return err
		}
		if err := tx.NotificationLogs.DeleteByMemberID(ctx, memberID); err != nil {
			return err
		}
		if err := tx.History.DeleteByMemberID(ctx, memberID); err != nil {
			return err
		}
		if err := tx.Payments.DeleteByMemberID(ctx, memberID); err != nil {
			return err
		}
		rows, err := tx.Members.Delete(ctx, memberID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &NotFoundError{Entity: "member", ID: memberID}
		}
		return tx.Activity.Create(ctx, &models.ActivityLog{
			AdminID:    adminID,
			Action:     models.ActionMemberDeleted,
			EntityType: "member",
			EntityID:   memberID,
			Details:    fmt.Sprintf("Deleted %s (%s)", member.FullName(), member.MemberCode),
		})
	})
	return translate(err, "delete member", "member", memberID)
}

// ComputeExpiryNotifications creates at most one expired notice per member
// per calendar day and one expiring notice per member per seven-day window.
// Runs are idempotent for a given day; a held lock makes the call a no-op.
func (s *membershipService) ComputeExpiryNotifications(ctx context.Context, now time.Time) (*ExpiryRunResult, error) {
	result := &ExpiryRunResult{}
	if s.locker != nil {
		token, ok, err := s.locker.AcquireLock(ctx, expiryLockName, expiryLockTTL)
		if err != nil {
			log.Printf("Expiry lock unavailable, running without it: %v", err)
		} else if !ok {
			result.Locked = true
			return result, nil
		} else {
			defer func() {
				if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), expiryLockName, token); err != nil {
					log.Printf("Failed to release expiry lock: %v", err)
				}
			}()
		}
	}

	// End dates are calendar days, so today is now's own calendar day. Notices
	// are stamped in UTC, so the dedup windows start at that day's local
	// midnight expressed in UTC.
	today := models.DateOf(now)
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	members, err := s.store.Members.ListActiveEndingBefore(ctx, today.AddDate(0, 0, expiringWindow+1))
	if err != nil {
		return nil, translate(err, "load expiring members", "member", nil)
	}

	for i := range members {
		member := &members[i]
		end := models.DateOf(*member.MembershipEnd)

		notice := &models.Notification{MemberID: member.ID, CreatedAt: now.UTC()}
		since := dayStart.UTC()
		if end.Before(today) {
			notice.Type = string(models.NotificationExpired)
			notice.Title = "Membership expired"
			notice.Message = fmt.Sprintf("%s (%s) membership expired on %s", member.FullName(), member.MemberCode, end.Format("2006-01-02"))
		} else {
			notice.Type = string(models.NotificationExpiring)
			notice.Title = "Membership expiring soon"
			notice.Message = fmt.Sprintf("%s (%s) membership expires on %s", member.FullName(), member.MemberCode, end.Format("2006-01-02"))
			since = dayStart.AddDate(0, 0, -(expiringWindow - 1)).UTC()
		}

		exists, err := s.store.Notifications.ExistsSince(ctx, member.ID, notice.Type, since)
		if err != nil {
			log.Printf("Failed to check notifications for member %d: %v", member.ID, err)
			result.Failed++
			continue
		}
		if exists {
			result.Skipped++
			continue
		}
		if err := s.store.Notifications.Create(ctx, notice); err != nil {
			log.Printf("Failed to create %s notification for member %d: %v", notice.Type, member.ID, err)
			result.Failed++
			continue
		}
		if notice.Type == string(models.NotificationExpired) {
			result.Expired++
		} else {
			result.Expiring++
			if s.notifier != nil && s.notifier.ExpiryRemindersEnabled() {
				s.notifier.SendExpiryReminder(ctx, member, 0)
			}
		}
	}

	log.Printf("Expiry check: %d expired, %d expiring, %d already notified, %d failed",
		result.Expired, result.Expiring, result.Skipped, result.Failed)
	return result, nil
}

func (s *membershipService) GetMember(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.store.Members.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "load member", "member", id)
	}
	return member, nil
}

func (s *membershipService) GetMemberByCode(ctx context.Context, code string) (*models.Member, error) {
	member, err := s.store.Members.GetByCode(ctx, code)
	if err != nil {
		return nil, translate(err, "load member", "member", code)
	}
	return member, nil
}

func (s *membershipService) ListMembers(ctx context.Context, filter repository.MemberFilter) ([]models.Member, int64, error) {
	if filter.Status != "" && !models.ValidMemberStatus(filter.Status) {
		return nil, 0, validationErr("status", "must be active, inactive or pending")
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Now.IsZero() {
		filter.Now = s.now()
	}
	members, err := s.store.Members.List(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "list members", "member", nil)
	}
	total, err := s.store.Members.Count(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "count members", "member", nil)
	}
	return members, total, nil
}

func (s *membershipService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.Member, error) {
	fields := map[string]interface{}{}
	setString := func(column string, value *string, required bool) error {
		if value == nil {
			return nil
		}
		v := strings.TrimSpace(*value)
		if required && v == "" {
			return validationErr(column, "must not be empty")
		}
		fields[column] = v
		return nil
	}
	for _, f := range []struct {
		column   string
		value    *string
		required bool
	}{
		{"first_name", in.FirstName, true},
		{"last_name", in.LastName, true},
		{"phone", in.Phone, true},
		{"email", in.Email, false},
		{"gender", in.Gender, false},
		{"address", in.Address, false},
		{"emergency_contact_name", in.EmergencyContactName, false},
		{"emergency_contact_phone", in.EmergencyContactPhone, false},
		{"notes", in.Notes, false},
	} {
		if err := setString(f.column, f.value, f.required); err != nil {
			return nil, err
		}
	}
	if in.DateOfBirth != nil {
		fields["date_of_birth"] = models.DateOf(*in.DateOfBirth)
	}
	if len(fields) == 0 {
		return nil, validationErr("", "no fields to update")
	}

	rows, err := s.store.Members.UpdateProfile(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "update member", "member", id)
	}
	if rows == 0 {
		return nil, &NotFoundError{Entity: "member", ID: id}
	}
	return s.GetMember(ctx, id)
}

func (s *membershipService) GetHistory(ctx context.Context, memberID uint) ([]models.MembershipHistory, error) {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	history, err := s.store.History.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, translate(err, "load membership history", "member", memberID)
	}
	return history, nil
}
