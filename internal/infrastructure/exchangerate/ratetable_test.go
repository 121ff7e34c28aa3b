package exchangerate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/shared/logger"
)

func newTable(t *testing.T) *RateTable {
	t.Helper()
	table, err := NewRateTable("usd", map[string]string{"EUR": "0.5", "amd": "400"}, logger.NewNopLogger())
	require.NoError(t, err)
	return table
}

func TestRateTable_Convert(t *testing.T) {
	table := newTable(t)

	tests := []struct {
		name     string
		amount   string
		from, to string
		want     string
		wantErr  bool
	}{
		{"same currency", "12.345", "EUR", "eur", "12.345", false},
		{"from default", "10", "USD", "EUR", "5", false},
		{"to default", "10", "EUR", "USD", "20", false},
		{"cross rate", "1", "EUR", "AMD", "800", false},
		{"rounds to cents", "1", "AMD", "USD", "0", false},
		{"unknown currency", "1", "USD", "GBP", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Convert(money.MustParse(tt.amount), tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedCurrency)
				return
			}
			require.NoError(t, err)
			assert.True(t, money.MustParse(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestRateTable_InvalidRates(t *testing.T) {
	_, err := NewRateTable("USD", map[string]string{"EUR": "-1"}, logger.NewNopLogger())
	assert.Error(t, err)

	_, err = NewRateTable("USD", map[string]string{"USD": "2"}, logger.NewNopLogger())
	assert.Error(t, err)

	_, err = NewRateTable("USD", map[string]string{"EUR": "abc"}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestRateTable_UserCurrency(t *testing.T) {
	table := newTable(t)

	eur, err := customer.NewCustomer("a@example.com", "A", "B", "eur")
	require.NoError(t, err)
	gbp, err := customer.NewCustomer("b@example.com", "A", "B", "GBP")
	require.NoError(t, err)

	assert.Equal(t, "EUR", table.UserCurrency(eur))
	assert.Equal(t, "USD", table.UserCurrency(gbp))
	assert.Equal(t, "USD", table.UserCurrency(nil))
}
