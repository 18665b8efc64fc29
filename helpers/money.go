package helpers

import (
	"github.com/shopspring/decimal"
)

// All persisted money is rounded to 2 decimal places, half away from zero,
// independently at every credit/debit boundary. Rounding remainders of a
// cascading split stay with the platform.
const MoneyPlaces = 2

var Hundred = decimal.NewFromInt(100)

// RoundMoney normalizes an amount before it is persisted or compared.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Percent applies rate (given in percent, e.g. 2.5) to base.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(base.Mul(rate).Div(Hundred))
}
