package flow

import "github.com/shopspring/decimal"

// strikePlaces is the precision strikes are normalized to before keying.
const strikePlaces = 4

// StrikeKey is a fixed-precision rendering of a strike price, so strikes that
// are equal after rounding share one accumulator regardless of float noise.
type StrikeKey string

// KeyOf returns the normalized key for a strike price.
func KeyOf(strike float64) StrikeKey {
	return StrikeKey(decimal.NewFromFloat(strike).StringFixed(strikePlaces))
}
