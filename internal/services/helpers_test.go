package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gym_manager/internal/models"
	"gym_manager/internal/repository"
	"gym_manager/internal/testutil"
	"gym_manager/pkg/sms"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	store *repository.Store
	admin *models.User
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	admin := &models.User{
		Username:     "frontdesk",
		Email:        "frontdesk@gym.test",
		Role:         string(models.Admin),
		PasswordHash: "unused",
		IsActive:     true,
	}
	require.NoError(t, store.Users.Create(context.Background(), admin))
	return &fixture{db: db, store: store, admin: admin}
}

func (f *fixture) plan(t testing.TB, name string, days int, price float64) *models.MembershipPlan {
	t.Helper()
	plan := &models.MembershipPlan{
		Name:         name,
		DurationDays: days,
		Price:        price,
		Features:     []string{"Gym floor"},
		Status:       string(models.PlanActive),
	}
	require.NoError(t, f.store.Plans.Create(context.Background(), plan))
	return plan
}

func (f *fixture) product(t testing.TB, name string, price float64, stock int) *models.CafeProduct {
	t.Helper()
	product := &models.CafeProduct{
		Name:          name,
		Category:      string(models.CategoryBeverage),
		Price:         price,
		CostPrice:     price / 2,
		StockQuantity: stock,
		Status:        string(models.ProductActive),
	}
	require.NoError(t, f.store.Products.Create(context.Background(), product))
	return product
}

func (f *fixture) stock(t testing.TB, productID uint) int {
	t.Helper()
	product, err := f.store.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return product.StockQuantity
}

func (f *fixture) count(t testing.TB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) membershipService(notifier NotificationService, locker Locker, now time.Time) *membershipService {
	svc := NewMembershipService(f.store, notifier, locker, "GYM").(*membershipService)
	svc.now = func() time.Time { return now }
	return svc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type sentMessage struct {
	Phone string
	Text  string
}

// fakeGateway records every Send and answers according to its fields.
type fakeGateway struct {
	mu     sync.Mutex
	sent   []sentMessage
	reject bool
	err    error
}

func (g *fakeGateway) Send(ctx context.Context, phone, text string) (*sms.SendResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{Phone: phone, Text: text})
	if g.err != nil {
		return nil, g.err
	}
	if g.reject {
		return &sms.SendResult{Success: false, ProviderMessage: "HTTP 503"}, nil
	}
	return &sms.SendResult{Success: true, ProviderMessage: "msg id=42"}, nil
}

func (g *fakeGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

type fakeLocker struct {
	held     map[string]bool
	err      error
	released []string
}

func (l *fakeLocker) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[name] {
		return "", false, nil
	}
	l.held[name] = true
	return name + "-token", true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, name, token string) error {
	delete(l.held, name)
	l.released = append(l.released, name)
	return nil
}

var errGatewayDown = errors.New("dial tcp: connection refused")
