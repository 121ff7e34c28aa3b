package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/shared/money"
)

func newTestCustomer(t *testing.T, balance string) *Customer {
	t.Helper()
	c, err := ReconstructCustomer(CustomerParams{
		ID:       1,
		Email:    "ada@example.com",
		Currency: "USD",
		Balance:  money.MustParse(balance),
		Active:   true,
		Version:  1,
	})
	require.NoError(t, err)
	return c
}

func TestBalance_DebitClamps(t *testing.T) {
	tests := []struct {
		name      string
		balance   string
		debit     string
		wantLeft  string
		wantDrawn string
	}{
		{"partial", "5", "10", "0", "5"},
		{"exact", "10", "10", "0", "10"},
		{"plenty", "25.50", "10", "15.50", "10"},
		{"zero debit", "3", "0", "3", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCustomer(t, tt.balance)

			drawn, err := c.Debit(money.MustParse(tt.debit))
			require.NoError(t, err)
			assert.True(t, money.MustParse(tt.wantLeft).Equal(c.Balance().Amount()), "left %s", c.Balance().Amount())
			assert.True(t, money.MustParse(tt.wantDrawn).Equal(drawn), "drawn %s", drawn)
			assert.False(t, c.Balance().Amount().IsNegative())
		})
	}
}

func TestBalance_RejectsNegative(t *testing.T) {
	c := newTestCustomer(t, "5")

	_, err := c.Debit(money.MustParse("-1"))
	assert.Error(t, err)
	assert.Error(t, c.Credit(money.MustParse("-1")))

	_, err = NewBalance(money.MustParse("-0.01"))
	assert.Error(t, err)
}

func TestCustomer_Credit(t *testing.T) {
	c := newTestCustomer(t, "1.25")
	v := c.Version()

	require.NoError(t, c.Credit(money.MustParse("2.50")))
	assert.True(t, money.MustParse("3.75").Equal(c.Balance().Amount()))
	assert.Equal(t, v+1, c.Version())
}

func TestCustomer_Coupons(t *testing.T) {
	c := newTestCustomer(t, "0")

	c.AddCoupons("GIFT", "GIFT", "BONUS")
	assert.Equal(t, []string{"GIFT", "BONUS"}, c.Coupons())

	v := c.Version()
	c.AddCoupons("GIFT")
	assert.Equal(t, v, c.Version(), "adding an owned code is a no-op")

	c.RemoveCoupons("GIFT", "MISSING")
	assert.Equal(t, []string{"BONUS"}, c.Coupons())
}

func TestCustomer_Referral(t *testing.T) {
	c := newTestCustomer(t, "0")
	assert.False(t, c.HasReferral())

	id := "ref-1"
	c.SetReferralID(&id)
	assert.True(t, c.HasReferral())
}
