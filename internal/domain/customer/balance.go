package customer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/shared/money"
)

// Balance is stored credit. It never goes below zero.
type Balance struct {
	amount decimal.Decimal
}

func NewBalance(amount decimal.Decimal) (Balance, error) {
	if amount.IsNegative() {
		return Balance{}, fmt.Errorf("balance cannot be negative: %s", amount)
	}
	return Balance{amount: money.Round(amount)}, nil
}

func (b Balance) Amount() decimal.Decimal {
	return b.amount
}

func (b Balance) IsZero() bool {
	return b.amount.IsZero()
}

// Debit subtracts amount, clamping the result at zero. It returns the new
// balance and the part of amount actually drawn.
func (b Balance) Debit(amount decimal.Decimal) (Balance, decimal.Decimal, error) {
	if amount.IsNegative() {
		return b, decimal.Zero, fmt.Errorf("debit amount cannot be negative: %s", amount)
	}
	drawn := decimal.Min(b.amount, amount)
	return Balance{amount: money.Round(b.amount.Sub(drawn))}, drawn, nil
}

// Credit adds amount.
func (b Balance) Credit(amount decimal.Decimal) (Balance, error) {
	if amount.IsNegative() {
		return b, fmt.Errorf("credit amount cannot be negative: %s", amount)
	}
	return Balance{amount: money.Round(b.amount.Add(amount))}, nil
}
