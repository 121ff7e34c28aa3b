package exchangerate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/application/payment/exchangerate"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/shared/logger"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// RateTable converts with fixed rates expressed as units of a currency per
// one unit of the default currency.
type RateTable struct {
	mu              sync.RWMutex
	defaultCurrency string
	rates           map[string]decimal.Decimal
	logger          logger.Interface
}

// Ensure RateTable implements CurrencyConverter
var _ exchangerate.CurrencyConverter = (*RateTable)(nil)

// NewRateTable parses rates. The default currency always has rate 1.
func NewRateTable(defaultCurrency string, rates map[string]string, logger logger.Interface) (*RateTable, error) {
	t := &RateTable{
		defaultCurrency: strings.ToUpper(defaultCurrency),
		rates:           make(map[string]decimal.Decimal, len(rates)+1),
		logger:          logger,
	}
	t.rates[t.defaultCurrency] = decimal.NewFromInt(1)

	for currency, raw := range rates {
		rate, err := money.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", currency, err)
		}
		if err := t.SetRate(currency, rate); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SetRate replaces the rate of currency. The default currency cannot change.
func (t *RateTable) SetRate(currency string, rate decimal.Decimal) error {
	currency = strings.ToUpper(currency)
	if !rate.IsPositive() {
		return fmt.Errorf("rate for %s must be positive, got %s", currency, rate)
	}
	if currency == t.defaultCurrency {
		if !rate.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("rate of the default currency %s must be 1", currency)
		}
		return nil
	}

	t.mu.Lock()
	previous, existed := t.rates[currency]
	t.rates[currency] = rate
	t.mu.Unlock()

	if existed && !previous.Equal(rate) {
		t.logger.Infow("exchange rate updated", "currency", currency, "from", previous, "to", rate)
	}
	return nil
}

func (t *RateTable) rate(currency string) (decimal.Decimal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rates[strings.ToUpper(currency)]
	return r, ok
}

// Convert goes through the default currency and rounds to cents.
func (t *RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if strings.EqualFold(from, to) {
		return amount, nil
	}
	fromRate, ok := t.rate(from)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
	}
	toRate, ok := t.rate(to)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}
	return money.Round(amount.Div(fromRate).Mul(toRate)), nil
}

func (t *RateTable) Supports(currency string) bool {
	_, ok := t.rate(currency)
	return ok
}

func (t *RateTable) UserCurrency(c *customer.Customer) string {
	if c != nil && c.Currency() != "" && t.Supports(c.Currency()) {
		return strings.ToUpper(c.Currency())
	}
	return t.defaultCurrency
}

// DefaultCurrency is the currency every rate is relative to.
func (t *RateTable) DefaultCurrency() string {
	return t.defaultCurrency
}
