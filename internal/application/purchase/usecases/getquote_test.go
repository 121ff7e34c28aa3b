package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/coupon"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/errors"
)

func TestGetQuote(t *testing.T) {
	f := newFixture(t, subscription.Policy{})
	f.addCustomer(t, 1, "1.5", false)
	f.addPackage(t, 1, "hosting", "hosting-pro")
	off := f.addCoupon(t, coupon.CouponParams{
		ID:         3,
		Code:       "TWO",
		Amount:     money.Amounts{"USD": dec("2")},
		RedeemType: coupon.RedeemManual,
	})
	f.addPlan(t, 1, 1, "pro-monthly", "10", vo.Monthly, planOpts{coupons: []*coupon.Coupon{off}})
	f.addPlan(t, 2, 1, "pro-trial", "10", vo.Monthly, planOpts{trialDays: 7})

	uc := NewGetQuoteUseCase(Repositories{
		Customers:     f.customers,
		Plans:         f.plans,
		Packages:      f.packages,
		Purchases:     f.purchases,
		Subscriptions: f.subscriptions,
	}, NewHandlerRegistry(nil), NewPricer(money.Resolver{DefaultCurrency: "USD"}), f.uc.logger)
	uc.SetClock(func() time.Time { return testNow })

	tests := []struct {
		name        string
		query       GetQuoteQuery
		wantSummary string
		wantCharge  string
		wantErr     func(error) bool
	}{
		{
			name:        "coupon and balance",
			query:       GetQuoteQuery{UserID: 1, Host: site, PlanAlias: "pro-monthly", CouponCode: "TWO"},
			wantSummary: "6.5",
			wantCharge:  "6.5",
		},
		{
			name:        "balance only",
			query:       GetQuoteQuery{UserID: 1, Host: site, PlanAlias: "pro-monthly"},
			wantSummary: "8.5",
			wantCharge:  "8.5",
		},
		{
			name:        "trial charges nothing now",
			query:       GetQuoteQuery{UserID: 1, Host: site, PlanAlias: "pro-trial"},
			wantSummary: "8.5",
			wantCharge:  "0",
		},
		{
			name:    "unknown coupon",
			query:   GetQuoteQuery{UserID: 1, Host: site, PlanAlias: "pro-monthly", CouponCode: "NOPE"},
			wantErr: errors.IsPolicyViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := uc.Execute(context.Background(), tt.query)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.wantSummary).Equal(q.Summary), q.Summary.String())
			assert.True(t, dec(tt.wantCharge).Equal(q.ChargeNow), q.ChargeNow.String())
			assert.Equal(t, "month", q.Period)
		})
	}
	assert.Empty(t, f.gateway.Requests)
}
