package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/shared/biztime"
)

// Discount is the total discount of the frozen coupons, capped at the price.
func (s *Subscription) Discount(r money.Resolver) (decimal.Decimal, error) {
	return coupon.TotalDiscount(s.coupons, s.price, s.currency, r.DefaultCurrency, r.Converter)
}

// Summary is what one period costs: price minus discount, never negative.
func (s *Subscription) Summary(r money.Resolver) (decimal.Decimal, error) {
	discount, err := s.Discount(r)
	if err != nil {
		return decimal.Zero, err
	}
	return money.NonNegative(s.price.Sub(discount)), nil
}

// IsFree reports whether a period costs nothing.
func (s *Subscription) IsFree(r money.Resolver) (bool, error) {
	summary, err := s.Summary(r)
	if err != nil {
		return false, err
	}
	return summary.IsZero(), nil
}

// DaysLeft counts calendar days until the end date, 0 once it has passed.
func (s *Subscription) DaysLeft(now time.Time) int {
	end := s.EndDate()
	if end.Before(now) {
		return 0
	}
	return biztime.DaysBetween(now, end)
}

// PricePerDay spreads one period's summary over the days of the current
// period. Lifetime subscriptions have no period and return zero.
func (s *Subscription) PricePerDay(r money.Resolver) (decimal.Decimal, error) {
	if !s.frequency.IsRecurring() {
		return decimal.Zero, nil
	}
	days := biztime.DaysBetween(s.frequency.SubtractFrom(s.nextBillingDate), s.nextBillingDate)
	if days <= 0 {
		return decimal.Zero, nil
	}
	summary, err := s.Summary(r)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Div(decimal.NewFromInt(int64(days))), nil
}

// BalanceLeft is the unused paid value of the current period. Trials have none.
func (s *Subscription) BalanceLeft(now time.Time, r money.Resolver) (decimal.Decimal, error) {
	if s.OnTrial() {
		return decimal.Zero, nil
	}
	perDay, err := s.PricePerDay(r)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round(perDay.Mul(decimal.NewFromInt(int64(s.DaysLeft(now))))), nil
}
