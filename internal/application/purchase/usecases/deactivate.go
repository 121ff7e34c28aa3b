package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type DeactivatePurchaseCommand struct {
	PurchaseID uint
	// Expired closes the subscription on its end date instead of cancelling
	// it today.
	Expired bool
}

// DeactivatePurchaseUseCase takes a package away from a host together with
// its running subscription.
type DeactivatePurchaseUseCase struct {
	repos     Repositories
	handlers  *HandlerRegistry
	publisher events.EventPublisher
	txm       TransactionRunner
	now       func() time.Time
	logger    logger.Interface
}

func NewDeactivatePurchaseUseCase(
	repos Repositories,
	handlers *HandlerRegistry,
	publisher events.EventPublisher,
	txm TransactionRunner,
	logger logger.Interface,
) *DeactivatePurchaseUseCase {
	return &DeactivatePurchaseUseCase{
		repos:     repos,
		handlers:  handlers,
		publisher: publisher,
		txm:       txm,
		now:       biztime.NowUTC,
		logger:    logger,
	}
}

func (uc *DeactivatePurchaseUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *DeactivatePurchaseUseCase) Execute(ctx context.Context, cmd DeactivatePurchaseCommand) error {
	var changed []*subscription.StatusChangedEvent
	err := uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := uc.repos.Purchases.GetByID(ctx, cmd.PurchaseID)
		if err != nil {
			return fmt.Errorf("failed to get purchase: %w", err)
		}
		if p == nil {
			return errors.NewNotFoundError("purchase not found")
		}

		sub, err := uc.repos.Subscriptions.GetActiveByPurchase(ctx, p.ID())
		if err != nil {
			return fmt.Errorf("failed to get subscription: %w", err)
		}
		if sub != nil {
			from := sub.Status()
			if cmd.Expired {
				sub.Close()
			} else {
				sub.Deactivate(uc.now())
			}
			if err := uc.repos.Subscriptions.Update(ctx, sub); err != nil {
				return fmt.Errorf("failed to update subscription: %w", err)
			}
			changed = append(changed, subscription.NewStatusChangedEvent(sub, from))
		}

		if !p.Deactivate() {
			return nil
		}
		if err := uc.repos.Purchases.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update purchase: %w", err)
		}
		return uc.handlers.For(p.PackageKind()).OnDeactivate(ctx, p)
	})
	if err != nil {
		uc.logger.Errorw("failed to deactivate purchase", "purchase_id", cmd.PurchaseID, "error", err)
		return err
	}

	for _, e := range changed {
		if uc.publisher == nil {
			break
		}
		if err := uc.publisher.Publish(e); err != nil {
			uc.logger.Warnw("failed to publish event", "event_type", e.GetEventType(), "error", err)
		}
	}
	uc.logger.Infow("purchase deactivated", "purchase_id", cmd.PurchaseID, "expired", cmd.Expired)
	return nil
}
