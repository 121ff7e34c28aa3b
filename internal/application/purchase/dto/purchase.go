// Package dto provides data transfer objects for the purchase flow.
package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/purchase"
)

// QuoteDTO is the price a customer would pay for a plan right now.
type QuoteDTO struct {
	Plan                        string            `json:"plan"`
	Price                       decimal.Decimal   `json:"price"`
	Currency                    string            `json:"currency"`
	Period                      string            `json:"period"`
	Coupons                     []coupon.Snapshot `json:"coupons"`
	CouponDiscount              decimal.Decimal   `json:"coupon_discount"`
	SubscriptionBalanceDiscount decimal.Decimal   `json:"subscription_balance_discount"`
	UserBalanceDiscount         decimal.Decimal   `json:"user_balance_discount"`
	Discount                    decimal.Decimal   `json:"discount"`
	Summary                     decimal.Decimal   `json:"summary"`
	TrialDays                   int               `json:"trial_days"`
	// ChargeNow is zero during a trial.
	ChargeNow decimal.Decimal `json:"charge_now"`
}

type PurchaseDTO struct {
	ID           uint   `json:"id"`
	Host         string `json:"host"`
	PackageID    uint   `json:"package_id"`
	PackageKind  string `json:"package_kind"`
	PackageAlias string `json:"package_alias"`
	Reference    string `json:"reference,omitempty"`
	Active       bool   `json:"active"`
}

func ToPurchaseDTO(p *purchase.Purchase) *PurchaseDTO {
	if p == nil {
		return nil
	}
	d := &PurchaseDTO{
		ID:           p.ID(),
		Host:         p.Host().String(),
		PackageID:    p.PackageID(),
		PackageKind:  p.PackageKind(),
		PackageAlias: p.PackageAlias(),
		Active:       p.IsActive(),
	}
	if r := p.Reference(); r != nil {
		d.Reference = r.String()
	}
	return d
}
