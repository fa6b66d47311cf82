package utils

import "github.com/shopspring/decimal"

const PricePlaces = 4

// RoundPrice rounds half away from zero to PricePlaces decimals.
func RoundPrice(price float64) float64 {
	return decimal.NewFromFloat(price).Round(PricePlaces).InexactFloat64()
}
