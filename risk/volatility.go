package risk

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientHistory is returned when too few closes are available to
// form even a single return.
var ErrInsufficientHistory = errors.New("risk: insufficient price history")

// Volatility returns the population standard deviation of the log returns
// over the trailing window of at most period closes. It is a pure function
// of its input, which keeps backtests deterministic.
func Volatility(closes []float64, period int) (float64, error) {
	if len(closes) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 closes, got %d", ErrInsufficientHistory, len(closes))
	}
	if period > 0 && len(closes) > period {
		closes = closes[len(closes)-period:]
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	return stat.PopStdDev(returns, nil), nil
}
