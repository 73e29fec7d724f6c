package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gym_manager/internal/metrics"
	"gym_manager/internal/models"
	"gym_manager/internal/redis"
	"gym_manager/internal/repository"
	"gym_manager/pkg/sms"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// NotificationGateway is the SMS provider boundary. Only the success flag and
// provider message of the result are consumed.
type NotificationGateway interface {
	Send(ctx context.Context, phone, text string) (*sms.SendResult, error)
}

// BroadcastTracker stores bulk-send progress; *redis.Client satisfies it.
type BroadcastTracker interface {
	SetBroadcastProgress(ctx context.Context, progress *redis.BroadcastProgress, ttl time.Duration) error
	GetBroadcastProgress(ctx context.Context, id string) (*redis.BroadcastProgress, error)
}

type NotificationConfig struct {
	WelcomeEnabled   bool
	WelcomeTemplate  string
	ExpiryEnabled    bool
	ExpiryTemplate   string
	RatePerSecond    float64
	GatewayTimeout   time.Duration
	BroadcastTimeout time.Duration // bounds a whole background broadcast run
}

type SendRequest struct {
	MemberID  *uint
	Phone     string
	Message   string
	Type      string
	CreatedBy uint
}

type NotificationService interface {
	Send(ctx context.Context, req SendRequest) (*models.NotificationLog, error)
	SendWelcome(ctx context.Context, member *models.Member, plan *models.MembershipPlan, createdBy uint) *models.NotificationLog
	SendExpiryReminder(ctx context.Context, member *models.Member, createdBy uint) *models.NotificationLog
	ExpiryRemindersEnabled() bool
	Broadcast(ctx context.Context, filter repository.MemberFilter, message string, createdBy uint) (*redis.BroadcastProgress, error)
	BroadcastStatus(ctx context.Context, id string) (*redis.BroadcastProgress, error)
	GetLogs(ctx context.Context, filter repository.NotificationLogFilter) ([]models.NotificationLog, error)
	GetNotifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id uint) error
}

type notificationService struct {
	store   *repository.Store
	gateway NotificationGateway
	tracker BroadcastTracker
	cfg     NotificationConfig
}

func NewNotificationService(store *repository.Store, gateway NotificationGateway, tracker BroadcastTracker, cfg NotificationConfig) NotificationService {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	if cfg.BroadcastTimeout <= 0 {
		cfg.BroadcastTimeout = time.Hour
	}
	return &notificationService{store: store, gateway: gateway, tracker: tracker, cfg: cfg}
}

// RenderTemplate fills {member_name}, {plan_name} and {expiry_date}.
func RenderTemplate(tpl string, member *models.Member, plan *models.MembershipPlan) string {
	planName, expiry := "", ""
	if plan == nil && member != nil {
		plan = member.MembershipPlan
	}
	if plan != nil {
		planName = plan.Name
	}
	memberName := ""
	if member != nil {
		memberName = member.FullName()
		if member.MembershipEnd != nil {
			expiry = member.MembershipEnd.Format("2006-01-02")
		}
	}
	return strings.NewReplacer(
		"{member_name}", memberName,
		"{plan_name}", planName,
		"{expiry_date}", expiry,
	).Replace(tpl)
}

// Send makes one gateway attempt and records it. Delivery failures are
// reflected in the returned log's Status, not as an error.
func (s *notificationService) Send(ctx context.Context, req SendRequest) (*models.NotificationLog, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, validationErr("message", "is required")
	}
	if req.Type == "" {
		req.Type = string(models.MessageCustom)
	}
	if req.Phone == "" && req.MemberID != nil {
		member, err := s.store.Members.GetByID(ctx, *req.MemberID)
		if err != nil {
			return nil, translate(err, "load member", "member", *req.MemberID)
		}
		req.Phone = member.Phone
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, validationErr("phone", "is required")
	}
	return s.deliver(ctx, req), nil
}

func (s *notificationService) deliver(ctx context.Context, req SendRequest) *models.NotificationLog {
	entry := &models.NotificationLog{
		MemberID:  req.MemberID,
		Phone:     req.Phone,
		Message:   req.Message,
		Type:      req.Type,
		CreatedBy: req.CreatedBy,
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	result, err := s.gateway.Send(sendCtx, req.Phone, req.Message)
	cancel()

	switch {
	case err != nil:
		entry.Status = models.DeliveryFailed
		entry.ProviderMessage = err.Error()
	case result.Success:
		entry.Status = models.DeliverySent
		entry.ProviderMessage = result.ProviderMessage
	default:
		entry.Status = models.DeliveryFailed
		entry.ProviderMessage = result.ProviderMessage
	}
	metrics.SMSMessages.WithLabelValues(entry.Type, entry.Status).Inc()

	if entry.Status == models.DeliveryFailed {
		log.Printf("SMS %s to %s failed: %s", entry.Type, entry.Phone, entry.ProviderMessage)
	}

	// The log write must not depend on the caller's deadline, which may
	// already be spent on a slow gateway.
	logCtx, logCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer logCancel()
	if err := s.store.NotificationLogs.Create(logCtx, entry); err != nil {
		log.Printf("Failed to record notification log for %s: %v", entry.Phone, err)
	}
	return entry
}

func (s *notificationService) SendWelcome(ctx context.Context, member *models.Member, plan *models.MembershipPlan, createdBy uint) *models.NotificationLog {
	if !s.cfg.WelcomeEnabled || member == nil || member.Phone == "" {
		return nil
	}
	memberID := member.ID
	return s.deliver(ctx, SendRequest{
		MemberID:  &memberID,
		Phone:     member.Phone,
		Message:   RenderTemplate(s.cfg.WelcomeTemplate, member, plan),
		Type:      string(models.MessageWelcome),
		CreatedBy: createdBy,
	})
}

func (s *notificationService) ExpiryRemindersEnabled() bool {
	return s.cfg.ExpiryEnabled
}

func (s *notificationService) SendExpiryReminder(ctx context.Context, member *models.Member, createdBy uint) *models.NotificationLog {
	if !s.cfg.ExpiryEnabled || member == nil || member.Phone == "" {
		return nil
	}
	memberID := member.ID
	return s.deliver(ctx, SendRequest{
		MemberID:  &memberID,
		Phone:     member.Phone,
		Message:   RenderTemplate(s.cfg.ExpiryTemplate, member, nil),
		Type:      string(models.MessageExpiryReminder),
		CreatedBy: createdBy,
	})
}

// Broadcast resolves the members matching filter and starts sending message
// to each of them in the background, one gateway call per member paced by
// the configured rate. It returns the initial progress at once; callers poll
// BroadcastStatus with its ID. The message may use the same placeholders as
// the welcome template.
func (s *notificationService) Broadcast(ctx context.Context, filter repository.MemberFilter, message string, createdBy uint) (*redis.BroadcastProgress, error) {
	if strings.TrimSpace(message) == "" {
		return nil, validationErr("message", "is required")
	}
	if filter.Status != "" && !models.ValidMemberStatus(filter.Status) {
		return nil, validationErr("status", "must be active, inactive or pending")
	}
	filter.Limit, filter.Offset = 0, 0

	members, err := s.store.Members.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "load recipients", "member", nil)
	}
	recipients := members[:0]
	for _, m := range members {
		if m.Phone != "" {
			recipients = append(recipients, m)
		}
	}

	now := time.Now()
	progress := &redis.BroadcastProgress{
		ID:        uuid.NewString(),
		Total:     len(recipients),
		StartedAt: now,
		UpdatedAt: now,
	}
	s.track(ctx, progress)
	started := *progress

	// The run outlives the request that started it.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.BroadcastTimeout)
	go func() {
		defer cancel()
		s.runBroadcast(runCtx, recipients, message, createdBy, progress)
	}()

	log.Printf("Broadcast %s started for %d members by admin %d", progress.ID, progress.Total, createdBy)
	return &started, nil
}

func (s *notificationService) runBroadcast(ctx context.Context, recipients []models.Member, message string, createdBy uint, progress *redis.BroadcastProgress) {
	limit := rate.Inf
	if s.cfg.RatePerSecond > 0 {
		limit = rate.Limit(s.cfg.RatePerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	for i := range recipients {
		member := &recipients[i]
		if err := limiter.Wait(ctx); err != nil {
			progress.Aborted = true
			progress.Error = fmt.Sprintf("stopped after %d of %d messages: %v", progress.Sent+progress.Failed, progress.Total, err)
			break
		}
		memberID := member.ID
		entry := s.deliver(ctx, SendRequest{
			MemberID:  &memberID,
			Phone:     member.Phone,
			Message:   RenderTemplate(message, member, nil),
			Type:      string(models.MessageBulk),
			CreatedBy: createdBy,
		})
		if entry.Status == models.DeliverySent {
			progress.Sent++
		} else {
			progress.Failed++
		}
		progress.UpdatedAt = time.Now()
		s.track(ctx, progress)
	}

	progress.Done = !progress.Aborted
	progress.UpdatedAt = time.Now()
	s.track(ctx, progress)

	if progress.Aborted {
		log.Printf("Broadcast %s aborted: %s", progress.ID, progress.Error)
		return
	}
	log.Printf("Broadcast %s finished: %d sent, %d failed of %d", progress.ID, progress.Sent, progress.Failed, progress.Total)
}

func (s *notificationService) track(ctx context.Context, progress *redis.BroadcastProgress) {
	if s.tracker == nil {
		return
	}
	if err := s.tracker.SetBroadcastProgress(context.WithoutCancel(ctx), progress, 24*time.Hour); err != nil {
		log.Printf("Failed to store broadcast progress %s: %v", progress.ID, err)
	}
}

func (s *notificationService) BroadcastStatus(ctx context.Context, id string) (*redis.BroadcastProgress, error) {
	if s.tracker == nil {
		return nil, &NotFoundError{Entity: "broadcast", ID: id}
	}
	progress, err := s.tracker.GetBroadcastProgress(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "broadcast", ID: id}
	}
	return progress, nil
}

func (s *notificationService) GetLogs(ctx context.Context, filter repository.NotificationLogFilter) ([]models.NotificationLog, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	logs, err := s.store.NotificationLogs.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "load notification logs", "notification log", nil)
	}
	return logs, nil
}

func (s *notificationService) GetNotifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	notifications, err := s.store.Notifications.List(ctx, unreadOnly, limit)
	if err != nil {
		return nil, translate(err, "load notifications", "notification", nil)
	}
	return notifications, nil
}

func (s *notificationService) MarkNotificationRead(ctx context.Context, id uint) error {
	rows, err := s.store.Notifications.MarkAsRead(ctx, id)
	if err != nil {
		return translate(err, "update notification", "notification", id)
	}
	if rows == 0 {
		return &NotFoundError{Entity: "notification", ID: id}
	}
	return nil
}
