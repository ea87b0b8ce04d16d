// Package risk holds the position-sizing and bracket arithmetic shared by
// every strategy: quantity from cash-at-risk, volatility estimation, and
// stop-loss / take-profit price construction.
package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrice is returned when a non-positive price reaches the sizer.
var ErrInvalidPrice = errors.New("risk: last price must be positive")

// Quantity computes the number of units to trade from the available cash,
// the configured risk fraction and the current volatility estimate.
//
// The risked fraction shrinks monotonically as volatility rises:
// adjusted = riskFraction / (1 + volatility). Passing volatility 0 leaves
// the risk fraction untouched.
//
// The result is rounded half-to-even to a whole number of units. Zero is a
// valid output; callers decide whether a zero-quantity order is worth
// submitting.
func Quantity(cash, lastPrice, riskFraction, volatility float64) (float64, error) {
	if lastPrice <= 0 {
		return 0, fmt.Errorf("%w: got %f", ErrInvalidPrice, lastPrice)
	}
	adjusted := riskFraction / (1 + volatility)
	return math.RoundToEven(cash * adjusted / lastPrice), nil
}
