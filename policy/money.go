package policy

import "github.com/shopspring/decimal"

// MoneyPrecision is the number of decimal places every monetary output is
// rounded to.
const MoneyPrecision = 2

var MoneyTolerance = decimal.New(1, -MoneyPrecision)

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPrecision)
}

// Percent turns a whole percentage (10) or a fractional one (0.5) into a rate.
func Percent(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Shift(-2)
}
