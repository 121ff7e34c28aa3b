package subscription

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	// Update persists s guarded by its version.
	Update(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	// GetActiveByPurchase returns nil when the purchase has no active subscription.
	GetActiveByPurchase(ctx context.Context, purchaseID uint) (*Subscription, error)
	ListByUser(ctx context.Context, userID uint) ([]*Subscription, error)
	// ListDueForRenewal lists active auto-renewing subscriptions billed on
	// date, or on or before date when upTo is set.
	ListDueForRenewal(ctx context.Context, date time.Time, upTo bool) ([]*Subscription, error)
	// ListExpiring lists active subscriptions whose end date is on or before date.
	ListExpiring(ctx context.Context, date time.Time) ([]*Subscription, error)
	// ListForReminder lists active subscriptions billed after from and on or
	// before to.
	ListForReminder(ctx context.Context, from, to time.Time) ([]*Subscription, error)
}
