package subscription

import (
	"github.com/shopspring/decimal"

	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
)

// Policy decides whether a running subscription may be replaced.
type Policy struct {
	DowngradeAllowed                 bool
	SwitchRecurringToLifetimeAllowed bool
}

// CheckReplacement validates replacing current with a plan costing price (in
// the current subscription's currency) every frequency. A nil or inactive
// current subscription can always be replaced.
func (p Policy) CheckReplacement(current *Subscription, price decimal.Decimal, frequency vo.Frequency) error {
	if current == nil || !current.IsActive() {
		return nil
	}
	if !frequency.IsRecurring() {
		if current.Frequency().IsRecurring() && !p.SwitchRecurringToLifetimeAllowed {
			return ErrLifetimeSwitchNotAllowed
		}
		return nil
	}
	if p.DowngradeAllowed {
		return nil
	}
	if frequency.MonthlyEquivalent(price).LessThan(current.Frequency().MonthlyEquivalent(current.Price())) {
		return ErrDowngradeNotAllowed
	}
	return nil
}
