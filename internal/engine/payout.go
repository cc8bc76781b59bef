package engine

import "github.com/shopspring/decimal"

// Round2 rounds a multiplier to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Payout returns floor(bet * multiplier) without binary float drift,
// so 100 x 2.18 pays 218 rather than 217.
func Payout(bet int64, multiplier float64) int64 {
	if bet <= 0 || multiplier <= 0 {
		return 0
	}
	return decimal.NewFromInt(bet).
		Mul(decimal.NewFromFloat(multiplier)).
		Floor().
		IntPart()
}
