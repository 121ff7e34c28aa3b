// Package money holds currency amounts and the arithmetic used by pricing.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept for every amount.
const Scale = 2

var ErrMissingAmount = errors.New("no amount for currency")

// Converter converts amounts between currencies.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Round rounds half away from zero to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Clamp returns d bounded to [0, upper].
func Clamp(d, upper decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(upper) {
		return upper
	}
	return d
}

// NonNegative returns max(0, d).
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Parse parses a decimal string and rounds it to Scale.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Round(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Amounts maps an ISO currency code to an amount. Plans and coupons carry
// one price per currency; a missing currency is derived from the default one.
type Amounts map[string]decimal.Decimal

// Single builds Amounts with one currency.
func Single(currency string, amount decimal.Decimal) Amounts {
	return Amounts{strings.ToUpper(currency): amount}
}

// Get returns the stored amount for currency.
func (a Amounts) Get(currency string) (decimal.Decimal, bool) {
	v, ok := a[strings.ToUpper(currency)]
	return v, ok
}

// Resolve returns the amount in currency. When the currency is not stored,
// the amount in defaultCurrency is converted. A nil converter only allows
// exact matches.
func (a Amounts) Resolve(currency, defaultCurrency string, conv Converter) (decimal.Decimal, error) {
	if v, ok := a.Get(currency); ok {
		return v, nil
	}
	base, ok := a.Get(defaultCurrency)
	if !ok || conv == nil {
		return decimal.Zero, fmt.Errorf("%w %s", ErrMissingAmount, currency)
	}
	converted, err := conv.Convert(base, defaultCurrency, currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to convert %s to %s: %w", defaultCurrency, currency, err)
	}
	return Round(converted), nil
}

// IsZero reports whether every stored amount is zero.
func (a Amounts) IsZero() bool {
	for _, v := range a {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// Validate rejects negative amounts and malformed currency codes.
func (a Amounts) Validate() error {
	for cur, v := range a {
		if len(cur) != 3 || strings.ToUpper(cur) != cur {
			return fmt.Errorf("invalid currency code %q", cur)
		}
		if v.IsNegative() {
			return fmt.Errorf("negative amount for %s", cur)
		}
	}
	return nil
}

// Resolver resolves multi-currency amounts with one default currency and
// converter.
type Resolver struct {
	DefaultCurrency string
	Converter       Converter
}

// Resolve returns a in currency.
func (r Resolver) Resolve(a Amounts, currency string) (decimal.Decimal, error) {
	return a.Resolve(currency, r.DefaultCurrency, r.Converter)
}
