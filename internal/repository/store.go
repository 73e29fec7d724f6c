package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups every repository bound to the same connection or transaction.
type Store struct {
	db *gorm.DB

	Users            UserRepository
	Members          MemberRepository
	Plans            PlanRepository
	Payments         PaymentRepository
	History          HistoryRepository
	Products         ProductRepository
	Orders           OrderRepository
	OrderItems       OrderItemRepository
	Notifications    NotificationRepository
	NotificationLogs NotificationLogRepository
	Activity         ActivityLogRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:               db,
		Users:            NewUserRepository(db),
		Members:          NewMemberRepository(db),
		Plans:            NewPlanRepository(db),
		Payments:         NewPaymentRepository(db),
		History:          NewHistoryRepository(db),
		Products:         NewProductRepository(db),
		Orders:           NewOrderRepository(db),
		OrderItems:       NewOrderItemRepository(db),
		Notifications:    NewNotificationRepository(db),
		NotificationLogs: NewNotificationLogRepository(db),
		Activity:         NewActivityLogRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single database transaction.
// Returning an error from fn rolls back every statement issued through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
