package coupon

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/shared/money"
)

// EvaluationInput is everything the evaluator needs to know about the buyer.
type EvaluationInput struct {
	// Redeemed holds codes the customer owns, e.g. gifted addons.
	Redeemed []string
	// RequestedCode is the code typed by the customer, if any.
	RequestedCode string
	// HasReferral is true when the customer is enrolled in a referral program.
	HasReferral bool
}

// Evaluate selects the plan coupons that apply to a purchase, in plan order
// and without duplicates.
func Evaluate(planCoupons []*Coupon, in EvaluationInput) ([]*Coupon, error) {
	redeemed := lo.SliceToMap(in.Redeemed, func(code string) (string, struct{}) { return code, struct{}{} })

	applied := make([]*Coupon, 0, len(planCoupons))
	seen := make(map[uint]struct{}, len(planCoupons))
	requestedMatched := false

	for _, c := range planCoupons {
		if c == nil {
			continue
		}
		if _, dup := seen[c.ID()]; dup {
			continue
		}

		switch c.RedeemType() {
		case RedeemInternal:
			if _, ok := redeemed[c.Code()]; !ok {
				continue
			}
		case RedeemManual:
			if in.RequestedCode == "" || c.Code() != in.RequestedCode {
				continue
			}
			requestedMatched = true
			// Referral members keep the code but get no discount from it.
			if c.ReferralConnected() && in.HasReferral {
				continue
			}
			if c.LimitReached() {
				return nil, fmt.Errorf("%w: %s", ErrCouponLimitExpired, c.Code())
			}
		case RedeemAuto:
		default:
			continue
		}

		seen[c.ID()] = struct{}{}
		applied = append(applied, c)
	}

	if in.RequestedCode != "" && !requestedMatched {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCoupon, in.RequestedCode)
	}

	return applied, nil
}

// TotalDiscount sums the discount of every coupon on price and caps the
// result at price.
func TotalDiscount(coupons []Snapshot, price decimal.Decimal, currency, defaultCurrency string, conv money.Converter) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range coupons {
		d, err := c.DiscountOn(price, currency, defaultCurrency, conv)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to compute discount of coupon %s: %w", c.Code, err)
		}
		total = total.Add(d)
	}
	return money.Clamp(total, price), nil
}
