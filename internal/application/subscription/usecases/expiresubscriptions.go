package usecases

import (
	"context"
	"fmt"
	"time"

	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// ExpireSubscriptionsUseCase closes subscriptions whose end date has passed:
// cancelled ones, trials without a payment method and failed renewals.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	deactivator      PurchaseDeactivator
	publisher        events.EventPublisher
	lock             SweepLock
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	deactivator PurchaseDeactivator,
	publisher events.EventPublisher,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		deactivator:      deactivator,
		publisher:        publisher,
		logger:           logger,
	}
}

func (uc *ExpireSubscriptionsUseCase) SetLock(lock SweepLock) {
	uc.lock = lock
}

func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context, date time.Time) (*dto.SweepResult, error) {
	result := &dto.SweepResult{Date: date}

	subs, err := uc.subscriptionRepo.ListExpiring(ctx, date)
	if err != nil {
		return result, fmt.Errorf("failed to find expiring subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return result, nil
	}
	uc.logger.Infow("found expiring subscriptions to process", "count", len(subs))

	for _, sub := range subs {
		result.Processed++
		if uc.lock != nil {
			ok, err := uc.lock.TryAcquire(ctx, SweepExpire, sub.ID(), date)
			if err != nil || !ok {
				if err != nil {
					uc.logger.Warnw("failed to acquire expire lock", "subscription_id", sub.ID(), "error", err)
				}
				result.Skipped++
				continue
			}
		}

		if err := uc.deactivator.Execute(ctx, purchaseusecases.DeactivatePurchaseCommand{
			PurchaseID: sub.PurchaseID(),
			Expired:    true,
		}); err != nil {
			uc.logger.Errorw("failed to expire subscription", "subscription_id", sub.ID(), "error", err)
			result.Failed++
			continue
		}
		result.Succeeded++

		if uc.publisher != nil {
			e := purchase.NewPurchaseFailedEvent(purchase.Outcome{
				PurchaseID:     sub.PurchaseID(),
				UserID:         sub.UserID(),
				PlanAlias:      sub.Alias(),
				SubscriptionID: sub.ID(),
				Currency:       sub.Currency(),
				Renewal:        true,
				LastAttempt:    true,
				Message:        "subscription expired",
			})
			if err := uc.publisher.Publish(e); err != nil {
				uc.logger.Warnw("failed to publish event", "event_type", e.GetEventType(), "error", err)
			}
		}
		uc.logger.Debugw("subscription expired", "subscription_id", sub.ID())
	}

	uc.logger.Infow("expire sweep finished", "date", date, "expired", result.Succeeded, "failed", result.Failed)
	return result, nil
}
