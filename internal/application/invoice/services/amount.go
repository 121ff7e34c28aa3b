package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatAmount renders an amount with its ISO currency code and two
// decimals, grouped for English readers, e.g. "USD 1,234.50".
func FormatAmount(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err == nil {
		code = unit.String()
	} else {
		code = strings.ToUpper(code)
	}
	f, _ := amount.Round(2).Float64()
	p := message.NewPrinter(language.English)
	return fmt.Sprintf("%s %s", code, p.Sprint(number.Decimal(f, number.Scale(2))))
}
