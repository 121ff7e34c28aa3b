package usecases

import (
	"context"
	"fmt"
	"time"

	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	SubscriptionID uint
	// UserID limits the command to the owner's subscriptions. Zero is an
	// administrator.
	UserID uint
	// Immediate ends the subscription and the package today. Otherwise the
	// subscription runs until its next billing date.
	Immediate bool
}

type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	deactivator      PurchaseDeactivator
	publisher        events.EventPublisher
	now              func() time.Time
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	deactivator PurchaseDeactivator,
	publisher events.EventPublisher,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		deactivator:      deactivator,
		publisher:        publisher,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) error {
	sub, err := loadOwned(ctx, uc.subscriptionRepo, cmd.SubscriptionID, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return err
	}
	if !sub.IsActive() {
		return errors.NewValidationError(subscription.ErrSubscriptionInactive.Error())
	}

	if cmd.Immediate {
		if err := uc.deactivator.Execute(ctx, purchaseusecases.DeactivatePurchaseCommand{PurchaseID: sub.PurchaseID()}); err != nil {
			return err
		}
		uc.logger.Infow("subscription cancelled immediately", "subscription_id", cmd.SubscriptionID)
		return nil
	}

	from := sub.Status()
	sub.SetAutoRenew(false)
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	publishStatus(uc.publisher, uc.logger, sub, from)

	uc.logger.Infow("subscription cancelled successfully",
		"subscription_id", cmd.SubscriptionID,
		"ends_at", sub.EndDate(),
		"status", sub.Status().String(),
	)
	return nil
}

// loadOwned returns the subscription, or a not found error when it does not
// exist or belongs to someone else.
func loadOwned(ctx context.Context, repo subscription.Repository, id, userID uint) (*subscription.Subscription, error) {
	sub, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil || (userID != 0 && sub.UserID() != userID) {
		return nil, errors.NewNotFoundError("subscription not found")
	}
	return sub, nil
}

func publishStatus(publisher events.EventPublisher, log logger.Interface, sub *subscription.Subscription, from subscription.Status) {
	if publisher == nil || from == sub.Status() {
		return
	}
	if err := publisher.Publish(subscription.NewStatusChangedEvent(sub, from)); err != nil {
		log.Warnw("failed to publish status change", "subscription_id", sub.ID(), "error", err)
	}
}
