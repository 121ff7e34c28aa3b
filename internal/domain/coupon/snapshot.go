package coupon

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/shared/money"
)

// Snapshot is a coupon frozen at purchase time. Subscriptions keep snapshots
// so later edits of the coupon never change a running subscription's price.
type Snapshot struct {
	ID         uint            `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name,omitempty"`
	Amount     money.Amounts   `json:"amount,omitempty"`
	Percent    bool            `json:"percent"`
	PercentOff decimal.Decimal `json:"percent_off"`
	RedeemType RedeemType      `json:"redeem_type"`
	Prorate    bool            `json:"prorate"`
}

// DiscountOn returns this coupon's discount on price in currency, before capping.
func (s Snapshot) DiscountOn(price decimal.Decimal, currency, defaultCurrency string, conv money.Converter) (decimal.Decimal, error) {
	if s.Percent {
		return money.Round(price.Mul(s.PercentOff).Div(decimal.NewFromInt(100))), nil
	}
	return s.Amount.Resolve(currency, defaultCurrency, conv)
}

// Snapshots freezes a coupon list.
func Snapshots(coupons []*Coupon) []Snapshot {
	return lo.Map(coupons, func(c *Coupon, _ int) Snapshot { return c.Snapshot() })
}

// WithoutNonProrating drops coupons that only apply to the first period.
func WithoutNonProrating(snapshots []Snapshot) []Snapshot {
	return lo.Filter(snapshots, func(s Snapshot, _ int) bool { return s.Prorate })
}

// Codes lists the coupon codes.
func Codes(snapshots []Snapshot) []string {
	return lo.Map(snapshots, func(s Snapshot, _ int) string { return s.Code })
}
