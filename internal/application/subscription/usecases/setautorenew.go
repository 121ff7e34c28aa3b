package usecases

import (
	"context"
	"fmt"

	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type SetAutoRenewCommand struct {
	SubscriptionID uint
	UserID         uint
	AutoRenew      bool
}

type SetAutoRenewUseCase struct {
	subscriptionRepo subscription.Repository
	customerRepo     customer.Repository
	resolver         money.Resolver
	publisher        events.EventPublisher
	logger           logger.Interface
}

func NewSetAutoRenewUseCase(
	subscriptionRepo subscription.Repository,
	customerRepo customer.Repository,
	resolver money.Resolver,
	publisher events.EventPublisher,
	logger logger.Interface,
) *SetAutoRenewUseCase {
	return &SetAutoRenewUseCase{
		subscriptionRepo: subscriptionRepo,
		customerRepo:     customerRepo,
		resolver:         resolver,
		publisher:        publisher,
		logger:           logger,
	}
}

func (uc *SetAutoRenewUseCase) Execute(ctx context.Context, cmd SetAutoRenewCommand) error {
	sub, err := loadOwned(ctx, uc.subscriptionRepo, cmd.SubscriptionID, cmd.UserID)
	if err != nil {
		return err
	}
	if !sub.IsActive() {
		return errors.NewValidationError(subscription.ErrSubscriptionInactive.Error())
	}

	if cmd.AutoRenew {
		free, err := sub.IsFree(uc.resolver)
		if err != nil {
			return fmt.Errorf("failed to price subscription: %w", err)
		}
		if !free {
			c, err := uc.customerRepo.GetByID(ctx, sub.UserID())
			if err != nil {
				return fmt.Errorf("failed to get customer: %w", err)
			}
			if c == nil || !c.HasPaymentMethod() {
				return errors.NewValidationError("a payment method is required to renew automatically")
			}
		}
	}

	from := sub.Status()
	sub.SetAutoRenew(cmd.AutoRenew)
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	publishStatus(uc.publisher, uc.logger, sub, from)

	uc.logger.Infow("subscription auto renew changed", "subscription_id", sub.ID(), "auto_renew", cmd.AutoRenew)
	return nil
}
