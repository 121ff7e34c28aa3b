package usecases

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/plan"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
)

// Quote is the price of one purchase. It is computed once, before anything
// is charged, and passed by value through the purchase flow.
type Quote struct {
	Price     decimal.Decimal
	Currency  string
	Frequency vo.Frequency
	Coupons   []coupon.Snapshot
	// ManualCouponIDs are the applied coupons that consume a redemption.
	ManualCouponIDs []uint

	CouponDiscount decimal.Decimal
	// SubscriptionBalanceDiscount is the unused value of the subscription
	// being replaced.
	SubscriptionBalanceDiscount decimal.Decimal
	UserBalanceDiscount         decimal.Decimal
	// Discount is the sum of the three discounts, capped at Price.
	Discount decimal.Decimal
	Summary  decimal.Decimal

	TrialDays int
}

func (q Quote) HasTrial() bool { return q.TrialDays > 0 }

func (q Quote) IsFree() bool { return q.Summary.IsZero() }

// Charge is the amount asked from the gateway: nothing during a trial.
func (q Quote) Charge() decimal.Decimal {
	if q.HasTrial() {
		return decimal.Zero
	}
	return q.Summary
}

// CouponCodes lists the codes of the applied coupons.
func (q Quote) CouponCodes() []string {
	return coupon.Codes(q.Coupons)
}

// Pricer computes quotes.
type Pricer struct {
	resolver money.Resolver
}

func NewPricer(resolver money.Resolver) *Pricer {
	return &Pricer{resolver: resolver}
}

// Resolver exposes the currency resolver used for quotes.
func (p *Pricer) Resolver() money.Resolver {
	return p.resolver
}

// PlanQuoteInput is what a plan purchase is priced on.
type PlanQuoteInput struct {
	Plan       *plan.Plan
	Customer   *customer.Customer
	Currency   string
	CouponCode string
	// TrialDays is the trial left for the host, already reduced to zero when
	// the trial was consumed.
	TrialDays int
	// Previous is the subscription the purchase replaces, if any.
	Previous *subscription.Subscription
	Now      time.Time
}

// ForPlan prices a plan for a customer.
func (p *Pricer) ForPlan(in PlanQuoteInput) (Quote, error) {
	price, err := p.resolver.Resolve(in.Plan.Price(), in.Currency)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to resolve plan price: %w", err)
	}

	applied, err := coupon.Evaluate(in.Plan.Coupons(), coupon.EvaluationInput{
		Redeemed:      in.Customer.Coupons(),
		RequestedCode: in.CouponCode,
		HasReferral:   in.Customer.HasReferral(),
	})
	if err != nil {
		return Quote{}, err
	}

	q := Quote{
		Price:     price,
		Currency:  in.Currency,
		Frequency: in.Plan.Frequency(),
		Coupons:   coupon.Snapshots(applied),
		ManualCouponIDs: lo.FilterMap(applied, func(c *coupon.Coupon, _ int) (uint, bool) {
			return c.ID(), c.CountsUsage()
		}),
		TrialDays: in.TrialDays,
	}
	return p.finish(q, in.Customer, in.Previous, in.Now)
}

// ForRenewal prices the next period of a subscription on its frozen terms.
func (p *Pricer) ForRenewal(s *subscription.Subscription, c *customer.Customer, now time.Time) (Quote, error) {
	q := Quote{
		Price:     s.Price(),
		Currency:  s.Currency(),
		Frequency: s.Frequency(),
		Coupons:   s.Coupons(),
	}
	return p.finish(q, c, nil, now)
}

func (p *Pricer) finish(q Quote, c *customer.Customer, previous *subscription.Subscription, now time.Time) (Quote, error) {
	var err error
	q.CouponDiscount, err = coupon.TotalDiscount(q.Coupons, q.Price, q.Currency, p.resolver.DefaultCurrency, p.resolver.Converter)
	if err != nil {
		return Quote{}, err
	}

	q.SubscriptionBalanceDiscount = decimal.Zero
	if previous != nil && !previous.OnTrial() {
		left, err := previous.BalanceLeft(now, p.resolver)
		if err != nil {
			return Quote{}, fmt.Errorf("failed to compute balance left: %w", err)
		}
		q.SubscriptionBalanceDiscount, err = p.convert(left, previous.Currency(), q.Currency)
		if err != nil {
			return Quote{}, err
		}
	}

	q.UserBalanceDiscount, err = p.convert(c.Balance().Amount(), c.Currency(), q.Currency)
	if err != nil {
		return Quote{}, err
	}

	total := q.SubscriptionBalanceDiscount.Add(q.UserBalanceDiscount).Add(q.CouponDiscount)
	q.Discount = money.Clamp(total, q.Price)
	q.Summary = money.NonNegative(q.Price.Sub(q.Discount))
	return q, nil
}

func (p *Pricer) convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if amount.IsZero() || from == to {
		return amount, nil
	}
	if p.resolver.Converter == nil {
		return decimal.Zero, fmt.Errorf("no converter for %s to %s", from, to)
	}
	converted, err := p.resolver.Converter.Convert(amount, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to convert %s to %s: %w", from, to, err)
	}
	return money.Round(converted), nil
}
