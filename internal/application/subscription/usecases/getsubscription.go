package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type GetSubscriptionQuery struct {
	SubscriptionID uint
	UserID         uint
}

type GetSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	transactionRepo  transaction.Repository
	resolver         money.Resolver
	now              func() time.Time
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	transactionRepo transaction.Repository,
	resolver money.Resolver,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		transactionRepo:  transactionRepo,
		resolver:         resolver,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

func (uc *GetSubscriptionUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, query GetSubscriptionQuery) (*dto.SubscriptionDTO, error) {
	sub, err := loadOwned(ctx, uc.subscriptionRepo, query.SubscriptionID, query.UserID)
	if err != nil {
		return nil, err
	}
	return describe(ctx, sub, uc.transactionRepo, uc.resolver, uc.now())
}

// describe fills the derived fields of a subscription DTO.
func describe(ctx context.Context, sub *subscription.Subscription, txRepo transaction.Repository, r money.Resolver, now time.Time) (*dto.SubscriptionDTO, error) {
	d := dto.ToSubscriptionDTO(sub, now)

	var err error
	if d.Summary, err = sub.Summary(r); err != nil {
		return nil, fmt.Errorf("failed to price subscription: %w", err)
	}
	if d.BalanceLeft, err = sub.BalanceLeft(now, r); err != nil {
		return nil, fmt.Errorf("failed to compute balance left: %w", err)
	}

	last, err := txRepo.GetLastBySubscription(ctx, sub.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to get last transaction: %w", err)
	}
	if last != nil {
		d.PaymentIssue = sub.HasPaymentIssue(last)
	}
	return d, nil
}
