package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type ProlongSubscriptionCommand struct {
	SubscriptionID uint
	Months         int
}

// ProlongSubscriptionUseCase gives an active subscription free months.
type ProlongSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewProlongSubscriptionUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *ProlongSubscriptionUseCase {
	return &ProlongSubscriptionUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (uc *ProlongSubscriptionUseCase) Execute(ctx context.Context, cmd ProlongSubscriptionCommand) error {
	sub, err := loadOwned(ctx, uc.subscriptionRepo, cmd.SubscriptionID, 0)
	if err != nil {
		return err
	}

	previous := sub.NextBillingDate()
	if err := sub.Prolong(cmd.Months); err != nil {
		if stderrors.Is(err, subscription.ErrSubscriptionInactive) {
			return errors.NewValidationError(err.Error())
		}
		return errors.NewValidationError("invalid prolong period", err.Error())
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("subscription prolonged",
		"subscription_id", sub.ID(),
		"months", cmd.Months,
		"from", previous,
		"to", sub.NextBillingDate(),
	)
	return nil
}
