package usecases

import (
	"context"
	"fmt"
	"time"

	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// RenewalSettings controls how often a failing renewal is retried.
type RenewalSettings struct {
	// Attempts is the number of daily charges tried before the subscription
	// expires. Values below one mean one.
	Attempts          int
	RetryIntervalDays int
}

// RenewSubscriptionsUseCase is the daily renewal sweep. A subscription due on
// date is charged; ones due an interval earlier are retried. The last attempt
// also picks up anything overdue and expires it when the charge fails.
type RenewSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	purchaseRepo     purchase.Repository
	customerRepo     customer.Repository
	handlers         HandlerLookup
	renewer          Renewer
	deactivator      PurchaseDeactivator
	lock             SweepLock
	settings         RenewalSettings
	logger           logger.Interface
}

func NewRenewSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	purchaseRepo purchase.Repository,
	customerRepo customer.Repository,
	handlers HandlerLookup,
	renewer Renewer,
	deactivator PurchaseDeactivator,
	settings RenewalSettings,
	logger logger.Interface,
) *RenewSubscriptionsUseCase {
	if settings.Attempts < 1 {
		settings.Attempts = 1
	}
	if settings.RetryIntervalDays < 1 {
		settings.RetryIntervalDays = 1
	}
	return &RenewSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		purchaseRepo:     purchaseRepo,
		customerRepo:     customerRepo,
		handlers:         handlers,
		renewer:          renewer,
		deactivator:      deactivator,
		settings:         settings,
		logger:           logger,
	}
}

// SetLock sets the cross-process lock (optional).
func (uc *RenewSubscriptionsUseCase) SetLock(lock SweepLock) {
	uc.lock = lock
}

func (uc *RenewSubscriptionsUseCase) Execute(ctx context.Context, date time.Time) (*dto.SweepResult, error) {
	result := &dto.SweepResult{Date: date}

	for attempt := 1; attempt <= uc.settings.Attempts; attempt++ {
		last := attempt == uc.settings.Attempts
		day := biztime.AddDays(date, -(attempt-1)*uc.settings.RetryIntervalDays)

		subs, err := uc.subscriptionRepo.ListDueForRenewal(ctx, day, last)
		if err != nil {
			return result, fmt.Errorf("failed to list subscriptions due for renewal: %w", err)
		}
		if len(subs) == 0 {
			continue
		}
		uc.logger.Infow("renewing subscriptions", "attempt", attempt, "last_attempt", last, "day", day, "count", len(subs))

		for _, sub := range subs {
			result.Processed++
			uc.renewOne(ctx, sub, date, attempt, last, result)
		}
	}

	uc.logger.Infow("renewal sweep finished",
		"date", date,
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"deactivated", result.Deactivated,
	)
	return result, nil
}

func (uc *RenewSubscriptionsUseCase) renewOne(ctx context.Context, sub *subscription.Subscription, date time.Time, attempt int, last bool, result *dto.SweepResult) {
	if uc.lock != nil {
		ok, err := uc.lock.TryAcquire(ctx, SweepRenew, sub.ID(), date)
		if err != nil {
			uc.logger.Warnw("failed to acquire renewal lock", "subscription_id", sub.ID(), "error", err)
			result.Skipped++
			return
		}
		if !ok {
			uc.logger.Debugw("subscription already renewed by another process", "subscription_id", sub.ID())
			result.Skipped++
			return
		}
	}

	keep, err := uc.stillWanted(ctx, sub)
	if err != nil {
		uc.logger.Errorw("failed to check subscription owner", "subscription_id", sub.ID(), "error", err)
		result.Failed++
		return
	}
	if !keep {
		if err := uc.deactivator.Execute(ctx, purchaseusecases.DeactivatePurchaseCommand{PurchaseID: sub.PurchaseID()}); err != nil {
			uc.logger.Errorw("failed to deactivate unused package", "subscription_id", sub.ID(), "error", err)
			result.Failed++
			return
		}
		result.Deactivated++
		return
	}

	if _, err := uc.renewer.Renew(ctx, purchaseusecases.RenewCommand{
		SubscriptionID: sub.ID(),
		Attempt:        attempt,
		LastAttempt:    last,
	}); err != nil {
		uc.logger.Warnw("failed to renew subscription",
			"subscription_id", sub.ID(),
			"attempt", attempt,
			"last_attempt", last,
			"error", err,
		)
		result.Failed++
		return
	}
	result.Succeeded++
}

// stillWanted is false when the owner was deactivated or the host no longer
// uses the package.
func (uc *RenewSubscriptionsUseCase) stillWanted(ctx context.Context, sub *subscription.Subscription) (bool, error) {
	c, err := uc.customerRepo.GetByID(ctx, sub.UserID())
	if err != nil {
		return false, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil || !c.IsActive() {
		return false, nil
	}
	p, err := uc.purchaseRepo.GetByID(ctx, sub.PurchaseID())
	if err != nil {
		return false, fmt.Errorf("failed to get purchase: %w", err)
	}
	if p == nil {
		return false, nil
	}
	return uc.handlers.For(p.PackageKind()).IsInUse(ctx, p)
}
