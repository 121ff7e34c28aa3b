package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type ListUserSubscriptionsQuery struct {
	UserID     uint
	ActiveOnly bool
}

type ListUserSubscriptionsUseCase struct {
	subscriptionRepo subscription.Repository
	transactionRepo  transaction.Repository
	resolver         money.Resolver
	now              func() time.Time
	logger           logger.Interface
}

func NewListUserSubscriptionsUseCase(
	subscriptionRepo subscription.Repository,
	transactionRepo transaction.Repository,
	resolver money.Resolver,
	logger logger.Interface,
) *ListUserSubscriptionsUseCase {
	return &ListUserSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		transactionRepo:  transactionRepo,
		resolver:         resolver,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

func (uc *ListUserSubscriptionsUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *ListUserSubscriptionsUseCase) Execute(ctx context.Context, query ListUserSubscriptionsQuery) ([]*dto.SubscriptionDTO, error) {
	subs, err := uc.subscriptionRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "user_id", query.UserID, "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if query.ActiveOnly {
		subs = lo.Filter(subs, func(s *subscription.Subscription, _ int) bool { return s.IsActive() })
	}

	now := uc.now()
	out := make([]*dto.SubscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		d, err := describe(ctx, sub, uc.transactionRepo, uc.resolver, now)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
