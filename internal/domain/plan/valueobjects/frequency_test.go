package valueobjects

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFrequency_Type(t *testing.T) {
	tests := []struct {
		months     int
		wantType   FrequencyType
		wantPeriod string
		recurring  bool
	}{
		{0, FrequencyLifetime, "lifetime", false},
		{1, FrequencyMonthly, "month", true},
		{12, FrequencyYearly, "year", true},
		{24, FrequencyYears, "2 years", true},
		{36, FrequencyYears, "3 years", true},
		{3, FrequencyMonths, "3 months", true},
		{18, FrequencyMonths, "18 months", true},
	}

	for _, tt := range tests {
		t.Run(tt.wantPeriod, func(t *testing.T) {
			f, err := NewFrequency(tt.months)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantType, f.Type())
			assert.Equal(t, tt.wantPeriod, f.Period())
			assert.Equal(t, tt.recurring, f.IsRecurring())
		})
	}

	_, err := NewFrequency(-1)
	assert.Error(t, err)
}

func TestFrequency_AddTo(t *testing.T) {
	start := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), Monthly.AddTo(start))
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), Yearly.AddTo(start))
	assert.Equal(t, start, Lifetime.AddTo(start))
	assert.Equal(t, time.Date(2023, 1, 31, 23, 59, 59, 0, time.UTC), Yearly.SubtractFrom(start))
}

func TestFrequency_MonthlyEquivalent(t *testing.T) {
	assert.True(t, decimal.NewFromInt(10).Equal(Yearly.MonthlyEquivalent(decimal.NewFromInt(120))))
	assert.True(t, decimal.NewFromInt(15).Equal(Monthly.MonthlyEquivalent(decimal.NewFromInt(15))))
	assert.True(t, decimal.NewFromInt(300).Equal(Lifetime.MonthlyEquivalent(decimal.NewFromInt(300))))
}

func TestVisibility(t *testing.T) {
	v, err := ParseVisibility("hidden")
	assert.NoError(t, err)
	assert.True(t, v.Purchasable())
	assert.False(t, v.Listed())
	assert.False(t, VisibilityDisabled.Purchasable())

	_, err = NewVisibility(7)
	assert.Error(t, err)
}
