package exchangerate

import (
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/shared/money"
)

// CurrencyConverter converts between the configured currencies and picks the
// currency a customer is billed in.
type CurrencyConverter interface {
	money.Converter
	// UserCurrency returns the customer's currency when it is configured,
	// otherwise the default one.
	UserCurrency(c *customer.Customer) string
	Supports(currency string) bool
}
