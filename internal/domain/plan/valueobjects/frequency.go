package valueobjects

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/shared/biztime"
)

// FrequencyType tags how a billing frequency reads to a customer.
type FrequencyType string

const (
	FrequencyLifetime FrequencyType = "lifetime"
	FrequencyMonthly  FrequencyType = "monthly"
	FrequencyYearly   FrequencyType = "yearly"
	FrequencyMonths   FrequencyType = "months"
	FrequencyYears    FrequencyType = "years"
)

// Frequency is a billing period in months. Zero means lifetime.
type Frequency int

const (
	Lifetime Frequency = 0
	Monthly  Frequency = 1
	Yearly   Frequency = 12
)

// NewFrequency validates a month count.
func NewFrequency(months int) (Frequency, error) {
	if months < 0 {
		return 0, fmt.Errorf("billing frequency cannot be negative: %d", months)
	}
	return Frequency(months), nil
}

func (f Frequency) Months() int {
	return int(f)
}

func (f Frequency) IsRecurring() bool {
	return f != Lifetime
}

func (f Frequency) Type() FrequencyType {
	switch {
	case f == Lifetime:
		return FrequencyLifetime
	case f == Monthly:
		return FrequencyMonthly
	case f == Yearly:
		return FrequencyYearly
	case f%12 == 0:
		return FrequencyYears
	default:
		return FrequencyMonths
	}
}

// Duration returns the count and the unit of one period, e.g. (3, "year").
// Lifetime returns (0, "lifetime").
func (f Frequency) Duration() (int, string) {
	switch f.Type() {
	case FrequencyLifetime:
		return 0, "lifetime"
	case FrequencyYearly, FrequencyYears:
		return int(f) / 12, "year"
	default:
		return int(f), "month"
	}
}

// Period is the human readable period: "month", "year", "3 years", "6 months", "lifetime".
func (f Frequency) Period() string {
	n, unit := f.Duration()
	if n <= 1 {
		return unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func (f Frequency) String() string {
	return f.Period()
}

// AddTo advances t by one period. Lifetime returns t unchanged.
func (f Frequency) AddTo(t time.Time) time.Time {
	return biztime.AddMonths(t, int(f))
}

// SubtractFrom moves t back by one period.
func (f Frequency) SubtractFrom(t time.Time) time.Time {
	return biztime.AddMonths(t, -int(f))
}

// MonthlyEquivalent spreads price over the months of one period. Lifetime
// prices are compared as-is.
func (f Frequency) MonthlyEquivalent(price decimal.Decimal) decimal.Decimal {
	if !f.IsRecurring() {
		return price
	}
	return price.Div(decimal.NewFromInt(int64(f)))
}
