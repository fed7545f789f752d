package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits stored for every amount.
const MoneyScale = 8

// moneyMaxIntegerDigits keeps amounts within 18 total digits.
const moneyMaxIntegerDigits = 10

var moneyMax = decimal.New(1, moneyMaxIntegerDigits) // 10^10

// FitsLedgerScale reports whether d can be stored without loss: at most
// MoneyScale fractional digits and at most 18 significant digits in total.
func FitsLedgerScale(d decimal.Decimal) bool {
	if !d.Equal(d.Truncate(MoneyScale)) {
		return false
	}
	return d.Abs().LessThan(moneyMax)
}

// TruncateMoney truncates toward zero to MoneyScale fractional digits.
// Computed amounts (fees, conversion credits) are truncated, never rounded up,
// so the engine cannot create money.
func TruncateMoney(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(MoneyScale)
}
