// Package dto provides data transfer objects for subscriptions.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/subscription"
)

type SubscriptionDTO struct {
	ID              uint              `json:"id"`
	PurchaseID      uint              `json:"purchase_id"`
	UserID          uint              `json:"user_id"`
	Alias           string            `json:"alias"`
	Name            string            `json:"name"`
	Price           decimal.Decimal   `json:"price"`
	Summary         decimal.Decimal   `json:"summary"`
	Currency        string            `json:"currency"`
	Period          string            `json:"period"`
	Coupons         []coupon.Snapshot `json:"coupons"`
	Addons          []coupon.Snapshot `json:"addons"`
	Status          string            `json:"status"`
	AutoRenew       bool              `json:"auto_renew"`
	OnTrial         bool              `json:"on_trial"`
	TrialEndsAt     *time.Time        `json:"trial_ends_at,omitempty"`
	EndsAt          *time.Time        `json:"ends_at,omitempty"`
	NextBillingDate time.Time         `json:"next_billing_date"`
	DaysLeft        int               `json:"days_left"`
	BalanceLeft     decimal.Decimal   `json:"balance_left"`
	// PaymentIssue is set when the last charge of an active subscription failed.
	PaymentIssue bool `json:"payment_issue"`
}

// ToSubscriptionDTO copies the stored fields. Derived money fields are
// filled by the caller.
func ToSubscriptionDTO(s *subscription.Subscription, now time.Time) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:              s.ID(),
		PurchaseID:      s.PurchaseID(),
		UserID:          s.UserID(),
		Alias:           s.Alias(),
		Name:            s.Name(),
		Price:           s.Price(),
		Currency:        s.Currency(),
		Period:          s.Frequency().Period(),
		Coupons:         s.Coupons(),
		Addons:          s.Addons(),
		Status:          s.Status().String(),
		AutoRenew:       s.AutoRenew(),
		OnTrial:         s.OnTrial(),
		TrialEndsAt:     s.TrialEndsAt(),
		EndsAt:          s.EndsAt(),
		NextBillingDate: s.NextBillingDate(),
		DaysLeft:        s.DaysLeft(now),
	}
}

// SweepResult counts what one sweep run did.
type SweepResult struct {
	Date        time.Time `json:"date"`
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Deactivated int       `json:"deactivated"`
}
