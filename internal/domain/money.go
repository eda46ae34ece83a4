package domain

import "github.com/shopspring/decimal"

// exactExp is low enough for NewFromFloatWithExponent to expand any float64 exactly.
const exactExp = -1074

// LineAmount is the unrounded price of a quantity of one product.
func LineAmount(price float64, quantity int) float64 {
	return price * float64(quantity)
}

// Round2 rounds the exact binary value of f to two decimal places, ties to
// even. 2.675 is stored just below the tie and rounds down to 2.67.
func Round2(f float64) float64 {
	return decimal.NewFromFloatWithExponent(f, exactExp).RoundBank(2).InexactFloat64()
}
