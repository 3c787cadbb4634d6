package domain

import "github.com/shopspring/decimal"

// ToMajorUnits converts cents to a two-decimal major amount.
func ToMajorUnits(minor int64) float64 {
	f, _ := decimal.New(minor, -2).Float64()
	return f
}

// ToMinorUnits converts a major amount to cents, rounding half away from zero.
func ToMinorUnits(major float64) int64 {
	return decimal.NewFromFloat(major).Shift(2).Round(0).IntPart()
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
