package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/coupon"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
)

var usd = money.Resolver{DefaultCurrency: "USD"}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func endOfDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 999999999, time.UTC)
}

func timeRef(t time.Time) *time.Time {
	return &t
}

type params func(p *SubscriptionParams)

func newTestSubscription(t *testing.T, opts ...params) *Subscription {
	t.Helper()
	p := SubscriptionParams{
		ID:              1,
		PurchaseID:      10,
		UserID:          100,
		Alias:           "pro-monthly",
		Price:           money.MustParse("31"),
		Currency:        "USD",
		Frequency:       vo.Monthly,
		NextBillingDate: endOfDay(2026, 3, 31),
		Active:          true,
		Version:         1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	s, err := ReconstructSubscription(p)
	require.NoError(t, err)
	return s
}

func monthlyTerms(price string) Terms {
	return Terms{
		Alias:     "pro-monthly",
		Price:     money.MustParse(price),
		Currency:  "USD",
		Frequency: vo.Monthly,
		AutoRenew: true,
	}
}

type successOutcome bool

func (o successOutcome) IsSuccessful() bool { return bool(o) }

func TestSubscription_Status(t *testing.T) {
	next := endOfDay(2026, 3, 31)
	tests := []struct {
		name string
		opt  params
		want Status
	}{
		{"active", func(p *SubscriptionParams) {}, StatusActive},
		{"trial", func(p *SubscriptionParams) { p.TrialEndsAt = timeRef(next) }, StatusTrialActive},
		{"grace period still active", func(p *SubscriptionParams) { p.EndsAt = timeRef(next) }, StatusActive},
		{"cancelled early", func(p *SubscriptionParams) {
			p.Active = false
			p.EndsAt = timeRef(date(2026, 3, 15))
		}, StatusCancelled},
		{"expired at end date", func(p *SubscriptionParams) {
			p.Active = false
			p.EndsAt = timeRef(next)
		}, StatusExpired},
		{"expired without end date", func(p *SubscriptionParams) { p.Active = false }, StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSubscription(t, tt.opt)
			assert.Equal(t, tt.want, s.Status())
		})
	}
}

func TestSubscribe_New(t *testing.T) {
	now := date(2026, 1, 15)

	t.Run("with trial", func(t *testing.T) {
		terms := monthlyTerms("10")
		terms.TrialDays = 14

		s := Subscribe(nil, 10, 100, terms, now)

		require.NotNil(t, s.TrialEndsAt())
		assert.Equal(t, endOfDay(2026, 1, 29), *s.TrialEndsAt())
		assert.Equal(t, *s.TrialEndsAt(), s.NextBillingDate())
		assert.True(t, s.IsActive())
		assert.Nil(t, s.EndsAt())
		assert.Equal(t, StatusTrialActive, s.Status())
		assert.Equal(t, uint(0), s.ID())
	})

	t.Run("without trial strips non-prorating coupons", func(t *testing.T) {
		terms := monthlyTerms("10")
		terms.Coupons = []coupon.Snapshot{
			{ID: 1, Code: "FIRST", Prorate: false},
			{ID: 2, Code: "ALWAYS", Prorate: true},
		}

		s := Subscribe(nil, 10, 100, terms, now)

		assert.Nil(t, s.TrialEndsAt())
		assert.Equal(t, endOfDay(2026, 2, 15), s.NextBillingDate())
		assert.Equal(t, []string{"ALWAYS"}, coupon.Codes(s.Coupons()))
		assert.Equal(t, StatusActive, s.Status())
	})

	t.Run("no payment method ends on next billing date", func(t *testing.T) {
		terms := monthlyTerms("10")
		terms.AutoRenew = false

		s := Subscribe(nil, 10, 100, terms, now)

		require.NotNil(t, s.EndsAt())
		assert.Equal(t, s.NextBillingDate(), *s.EndsAt())
		assert.True(t, s.OnGracePeriod())
		assert.False(t, s.AutoRenew())
	})

	t.Run("addons kept until granted", func(t *testing.T) {
		terms := monthlyTerms("10")
		terms.Addons = []coupon.Snapshot{{ID: 5, Code: "GIFT"}}

		pending := Subscribe(nil, 10, 100, terms, now)
		assert.Len(t, pending.Addons(), 1)

		terms.AddonsGranted = true
		granted := Subscribe(nil, 10, 100, terms, now)
		assert.Empty(t, granted.Addons())
	})
}

func TestSubscribe_ExtendsRunningSubscription(t *testing.T) {
	s := newTestSubscription(t)
	v := s.Version()

	got := Subscribe(s, 10, 100, s.Terms(true), date(2026, 3, 31))

	assert.Same(t, s, got)
	assert.Equal(t, endOfDay(2026, 4, 30), s.NextBillingDate())
	assert.Equal(t, v+1, s.Version())
}

func TestSubscribe_TrialBecomesActiveOnRenewal(t *testing.T) {
	trialEnd := endOfDay(2026, 3, 14)
	s := newTestSubscription(t, func(p *SubscriptionParams) {
		p.TrialEndsAt = timeRef(trialEnd)
		p.NextBillingDate = trialEnd
	})
	require.Equal(t, StatusTrialActive, s.Status())

	Subscribe(s, 10, 100, s.Terms(true), date(2026, 3, 14))

	assert.Nil(t, s.TrialEndsAt())
	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, endOfDay(2026, 4, 14), s.NextBillingDate())
}

func TestSubscribe_InactiveRestartsToday(t *testing.T) {
	s := newTestSubscription(t, func(p *SubscriptionParams) {
		p.Active = false
		p.NextBillingDate = endOfDay(2025, 6, 1)
	})

	Subscribe(s, 10, 100, monthlyTerms("10"), date(2026, 3, 2))

	assert.True(t, s.IsActive())
	assert.Equal(t, endOfDay(2026, 4, 2), s.NextBillingDate())
}

func TestSubscription_LastAttemptFailureExpires(t *testing.T) {
	s := newTestSubscription(t)

	s.MarkAsExpired()
	s.Close()

	assert.False(t, s.IsActive())
	assert.Equal(t, StatusExpired, s.Status())
}

func TestSubscription_CancelAndDeactivate(t *testing.T) {
	now := date(2026, 3, 10)

	s := newTestSubscription(t)
	s.CancelNow(now)
	assert.True(t, s.OnGracePeriod())
	require.NotNil(t, s.EndsAt())
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *s.EndsAt())

	d := newTestSubscription(t)
	d.Deactivate(now)
	assert.False(t, d.IsActive())
	assert.Equal(t, StatusCancelled, d.Status())
	assert.Nil(t, d.ActivePurchaseKey())
}

func TestSubscription_ExpireNow(t *testing.T) {
	s := newTestSubscription(t)

	s.ExpireNow(date(2026, 3, 10))

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start, s.NextBillingDate())
	require.NotNil(t, s.EndsAt())
	assert.Equal(t, start, *s.EndsAt())
}

func TestSubscription_SetAutoRenew(t *testing.T) {
	s := newTestSubscription(t)

	s.SetAutoRenew(false)
	require.NotNil(t, s.EndsAt())
	assert.Equal(t, s.NextBillingDate(), *s.EndsAt())

	s.SetAutoRenew(true)
	assert.Nil(t, s.EndsAt())
	assert.True(t, s.AutoRenew())

	s.SetAutoRenew(false)
	s.MarkAsActive()
	assert.Nil(t, s.EndsAt())
}

func TestSubscription_Prolong(t *testing.T) {
	t.Run("shifts every set date", func(t *testing.T) {
		s := newTestSubscription(t, func(p *SubscriptionParams) {
			p.EndsAt = timeRef(p.NextBillingDate)
		})

		require.NoError(t, s.Prolong(2))

		want := endOfDay(2026, 5, 31)
		assert.Equal(t, want, s.NextBillingDate())
		assert.Equal(t, want, *s.EndsAt())
		assert.Nil(t, s.TrialEndsAt())
	})

	t.Run("inactive", func(t *testing.T) {
		s := newTestSubscription(t, func(p *SubscriptionParams) { p.Active = false })
		assert.ErrorIs(t, s.Prolong(1), ErrSubscriptionInactive)
	})

	t.Run("non-positive months", func(t *testing.T) {
		s := newTestSubscription(t)
		assert.Error(t, s.Prolong(0))
	})
}

func TestSubscription_SwitchFrequency(t *testing.T) {
	now := date(2026, 3, 10)
	trialEnd := endOfDay(2026, 3, 20)

	tests := []struct {
		name        string
		trial       bool
		autoRenew   bool
		price       string
		wantEndsAt  bool
		wantTrialAt *time.Time
	}{
		{"paid with payment method", false, true, "300", false, nil},
		{"paid without payment method", false, false, "300", true, nil},
		{"free without payment method", false, false, "0", false, nil},
		{"keeps trial end", true, true, "300", false, &trialEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := newTestSubscription(t, func(p *SubscriptionParams) {
				if tt.trial {
					p.TrialEndsAt = timeRef(trialEnd)
					p.NextBillingDate = trialEnd
				}
			})
			terms := Terms{
				Alias:     "pro-yearly",
				Price:     money.MustParse(tt.price),
				Currency:  "USD",
				Frequency: vo.Yearly,
				AutoRenew: tt.autoRenew,
			}

			next := old.SwitchFrequency(terms, 0, now)

			assert.Equal(t, uint(0), next.ID(), "switching creates a new row")
			assert.Equal(t, old.PurchaseID(), next.PurchaseID())
			assert.Equal(t, old.UserID(), next.UserID())
			assert.Equal(t, "pro-yearly", next.Alias())
			assert.Equal(t, vo.Yearly, next.Frequency())
			assert.Equal(t, old.NextBillingDate(), next.NextBillingDate())
			assert.True(t, next.IsActive())
			assert.Equal(t, tt.wantEndsAt, next.EndsAt() != nil)
			assert.Equal(t, tt.wantTrialAt, next.TrialEndsAt())

			assert.False(t, old.IsActive())
		})
	}
}

func TestSubscription_HasPaymentIssue(t *testing.T) {
	s := newTestSubscription(t)

	assert.False(t, s.HasPaymentIssue(nil))
	assert.False(t, s.HasPaymentIssue(successOutcome(true)))
	assert.True(t, s.HasPaymentIssue(successOutcome(false)))

	s.Deactivate(date(2026, 3, 10))
	assert.False(t, s.HasPaymentIssue(successOutcome(false)))
}

func TestSubscription_Terms(t *testing.T) {
	s := newTestSubscription(t, func(p *SubscriptionParams) {
		p.Coupons = []coupon.Snapshot{{ID: 1, Code: "KEEP", Prorate: true}}
	})

	terms := s.Terms(true)

	assert.Equal(t, 0, terms.TrialDays)
	assert.True(t, s.Price().Equal(terms.Price))
	assert.Equal(t, vo.Monthly, terms.Frequency)
	assert.Equal(t, []string{"KEEP"}, coupon.Codes(terms.Coupons))
}
