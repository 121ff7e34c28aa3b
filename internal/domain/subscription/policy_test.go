package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"

	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
)

func TestPolicy_CheckReplacement(t *testing.T) {
	tests := []struct {
		name      string
		policy    Policy
		inactive  bool
		price     string
		frequency vo.Frequency
		wantErr   error
	}{
		{"upgrade", Policy{}, false, "50", vo.Monthly, nil},
		{"same monthly equivalent yearly", Policy{}, false, "372", vo.Yearly, nil},
		{"cheaper yearly is a downgrade", Policy{}, false, "300", vo.Yearly, ErrDowngradeNotAllowed},
		{"downgrade", Policy{}, false, "10", vo.Monthly, ErrDowngradeNotAllowed},
		{"downgrade allowed", Policy{DowngradeAllowed: true}, false, "10", vo.Monthly, nil},
		{"to lifetime", Policy{}, false, "1000", vo.Lifetime, ErrLifetimeSwitchNotAllowed},
		{"to lifetime allowed", Policy{SwitchRecurringToLifetimeAllowed: true}, false, "1", vo.Lifetime, nil},
		{"inactive current", Policy{}, true, "1", vo.Monthly, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := newTestSubscription(t, func(p *SubscriptionParams) { p.Active = !tt.inactive })

			err := tt.policy.CheckReplacement(current, money.MustParse(tt.price), tt.frequency)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.NoError(t, Policy{}.CheckReplacement(nil, money.MustParse("1"), vo.Monthly))
}
