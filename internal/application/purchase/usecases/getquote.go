package usecases

import (
	"context"
	"time"

	"github.com/ptuchik/billing/internal/application/purchase/dto"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type GetQuoteQuery struct {
	UserID     uint
	Host       ref.Ref
	PlanAlias  string
	CouponCode string
	Currency   string
}

// GetQuoteUseCase prices a plan purchase without charging or storing anything.
type GetQuoteUseCase struct {
	preparer
	pricer *Pricer
}

func NewGetQuoteUseCase(repos Repositories, handlers *HandlerRegistry, pricer *Pricer, logger logger.Interface) *GetQuoteUseCase {
	return &GetQuoteUseCase{
		preparer: preparer{
			repos:    repos,
			handlers: handlers,
			now:      biztime.NowUTC,
			logger:   logger,
		},
		pricer: pricer,
	}
}

func (uc *GetQuoteUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *GetQuoteUseCase) Execute(ctx context.Context, query GetQuoteQuery) (*dto.QuoteDTO, error) {
	prep, err := uc.prepare(ctx, query.UserID, query.Host, query.PlanAlias, query.Currency)
	if err != nil {
		return nil, err
	}

	q, err := uc.pricer.ForPlan(PlanQuoteInput{
		Plan:       prep.plan,
		Customer:   prep.customer,
		Currency:   prep.currency,
		CouponCode: query.CouponCode,
		TrialDays:  prep.trialDays,
		Previous:   prep.previous,
		Now:        uc.now(),
	})
	if err != nil {
		if pv := policyViolation(err); pv != nil {
			return nil, pv
		}
		uc.logger.Errorw("failed to price plan", "plan", query.PlanAlias, "error", err)
		return nil, err
	}

	return &dto.QuoteDTO{
		Plan:                        prep.plan.Alias(),
		Price:                       q.Price,
		Currency:                    q.Currency,
		Period:                      q.Frequency.Period(),
		Coupons:                     q.Coupons,
		CouponDiscount:              q.CouponDiscount,
		SubscriptionBalanceDiscount: q.SubscriptionBalanceDiscount,
		UserBalanceDiscount:         q.UserBalanceDiscount,
		Discount:                    q.Discount,
		Summary:                     q.Summary,
		TrialDays:                   q.TrialDays,
		ChargeNow:                   q.Charge(),
	}, nil
}
