package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/coupon"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
)

func usd(amount string) money.Amounts {
	return money.Single("USD", money.MustParse(amount))
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name      string
		packageID uint
		alias     string
		price     money.Amounts
		frequency vo.Frequency
		trialDays int
		wantErr   bool
	}{
		{"monthly", 1, "pro-monthly", usd("10"), vo.Monthly, 14, false},
		{"lifetime", 1, "pro-lifetime", usd("300"), vo.Lifetime, 0, false},
		{"missing package", 0, "pro", usd("10"), vo.Monthly, 0, true},
		{"missing alias", 1, "", usd("10"), vo.Monthly, 0, true},
		{"negative price", 1, "pro", usd("-1"), vo.Monthly, 0, true},
		{"lowercase currency", 1, "pro", money.Amounts{"usd": money.MustParse("1")}, vo.Monthly, 0, true},
		{"negative trial", 1, "pro", usd("10"), vo.Monthly, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(tt.packageID, tt.alias, "Pro", tt.price, tt.frequency, tt.trialDays)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, vo.VisibilityVisible, p.Visibility())
			assert.Equal(t, 1, p.Version())
		})
	}
}

func TestPlan_TrialDays(t *testing.T) {
	recurring, err := NewPlan(1, "pro-monthly", "Pro", usd("10"), vo.Monthly, 14)
	require.NoError(t, err)
	assert.Equal(t, 14, recurring.TrialDays())
	assert.True(t, recurring.IsRecurring())

	lifetime, err := NewPlan(1, "pro-lifetime", "Pro", usd("10"), vo.Lifetime, 14)
	require.NoError(t, err)
	assert.Equal(t, 0, lifetime.TrialDays(), "lifetime plans never grant a trial")
}

func TestPlan_Addons(t *testing.T) {
	p, err := NewPlan(1, "pro-monthly", "Pro", usd("10"), vo.Monthly, 0)
	require.NoError(t, err)

	gift, err := coupon.ReconstructCoupon(coupon.CouponParams{ID: 4, Code: "GIFT", RedeemType: coupon.RedeemInternal})
	require.NoError(t, err)

	p.SetAddons([]*coupon.Coupon{gift, gift})
	assert.Len(t, p.UniqueAddons(), 1)
}

func TestPlan_SetAdditionalPlans(t *testing.T) {
	p, err := NewPlan(1, "pro-monthly", "Pro", usd("10"), vo.Monthly, 0)
	require.NoError(t, err)

	p.SetAdditionalPlans([]string{"backup", "pro-monthly", "backup", "ssl"})
	assert.Equal(t, []string{"backup", "ssl"}, p.AdditionalPlans())
}

func TestPlaceholderPackage(t *testing.T) {
	now := time.Unix(1767225600, 0)

	p := NewPlaceholderPackage(9, "hosting", "pro", now)

	assert.True(t, p.IsPlaceholder())
	assert.Equal(t, uint(9), p.ID())
	assert.Equal(t, "pro-removed-1767225600", p.Alias())
	assert.Equal(t, "pro", p.Descriptor())
}
