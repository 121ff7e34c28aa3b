package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// SendExpirationRemindersUseCase announces charges coming up in DaysBefore
// days. Each subscription falls into the window on exactly one day.
type SendExpirationRemindersUseCase struct {
	subscriptionRepo subscription.Repository
	purchaseRepo     purchase.Repository
	customerRepo     customer.Repository
	handlers         HandlerLookup
	resolver         money.Resolver
	publisher        events.EventPublisher
	lock             SweepLock
	daysBefore       int
	logger           logger.Interface
}

func NewSendExpirationRemindersUseCase(
	subscriptionRepo subscription.Repository,
	purchaseRepo purchase.Repository,
	customerRepo customer.Repository,
	handlers HandlerLookup,
	resolver money.Resolver,
	publisher events.EventPublisher,
	daysBefore int,
	logger logger.Interface,
) *SendExpirationRemindersUseCase {
	if daysBefore < 1 {
		daysBefore = 1
	}
	return &SendExpirationRemindersUseCase{
		subscriptionRepo: subscriptionRepo,
		purchaseRepo:     purchaseRepo,
		customerRepo:     customerRepo,
		handlers:         handlers,
		resolver:         resolver,
		publisher:        publisher,
		daysBefore:       daysBefore,
		logger:           logger,
	}
}

func (uc *SendExpirationRemindersUseCase) SetLock(lock SweepLock) {
	uc.lock = lock
}

// Window returns the (from, to] range of billing dates reminded on date.
func (uc *SendExpirationRemindersUseCase) Window(date time.Time) (time.Time, time.Time) {
	to := biztime.EndOfDayUTC(biztime.AddDays(date, uc.daysBefore))
	from := biztime.EndOfDayUTC(biztime.AddDays(date, uc.daysBefore-1))
	return from, to
}

func (uc *SendExpirationRemindersUseCase) Execute(ctx context.Context, date time.Time) (*dto.SweepResult, error) {
	result := &dto.SweepResult{Date: date}
	from, to := uc.Window(date)

	subs, err := uc.subscriptionRepo.ListForReminder(ctx, from, to)
	if err != nil {
		return result, fmt.Errorf("failed to list subscriptions for reminder: %w", err)
	}

	for _, sub := range subs {
		result.Processed++
		sent, err := uc.remind(ctx, sub, date)
		switch {
		case err != nil:
			uc.logger.Warnw("failed to send expiration reminder", "subscription_id", sub.ID(), "error", err)
			result.Failed++
		case sent:
			result.Succeeded++
		default:
			result.Skipped++
		}
	}

	uc.logger.Infow("reminder sweep finished", "date", date, "sent", result.Succeeded, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (uc *SendExpirationRemindersUseCase) remind(ctx context.Context, sub *subscription.Subscription, date time.Time) (bool, error) {
	summary, err := sub.Summary(uc.resolver)
	if err != nil {
		return false, err
	}
	if summary.IsZero() {
		return false, nil
	}

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
	inUse, err := uc.handlers.For(p.PackageKind()).IsInUse(ctx, p)
	if err != nil || !inUse {
		return false, err
	}

	if uc.lock != nil {
		ok, err := uc.lock.TryAcquire(ctx, SweepReminder, sub.ID(), date)
		if err != nil || !ok {
			return false, err
		}
	}

	if uc.publisher == nil {
		return false, nil
	}
	if err := uc.publisher.Publish(subscription.NewExpirationReminderEvent(sub, summary)); err != nil {
		return false, fmt.Errorf("failed to publish reminder: %w", err)
	}
	return true, nil
}
