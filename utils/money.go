package utils

import "github.com/shopspring/decimal"

// KgPlaces is the precision weights are kept at.
const KgPlaces = 3

// LineTotal is kgs x price rounded half away from zero to whole rupees.
func LineTotal(kgs decimal.Decimal, pricePerKg int64) int64 {
	return kgs.Mul(decimal.NewFromInt(pricePerKg)).Round(0).IntPart()
}

// RoundKgs rounds a weight to KgPlaces.
func RoundKgs(kgs decimal.Decimal) decimal.Decimal {
	return kgs.Round(KgPlaces)
}
