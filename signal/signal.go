// Package signal contains the pluggable signal providers the decision core
// is parameterized by. Each provider reduces a market snapshot to one of
// three outcomes: bullish, bearish, or neither.
package signal

import (
	"context"
	"time"
)

type Signal int

const (
	None Signal = iota
	Bullish
	Bearish
)

func (s Signal) String() string {
	switch s {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "none"
	}
}

// Snapshot is the per-iteration market state handed to a provider.
type Snapshot struct {
	Symbol     string
	Time       time.Time
	LastPrice  float64
	Cash       float64
	Volatility float64
}

// Provider evaluates one snapshot. Providers hold their own data
// dependencies (broker history, news cache); errors abort the current
// iteration and propagate to the scheduler.
type Provider interface {
	Name() string
	Evaluate(ctx context.Context, snap Snapshot) (Signal, error)
}
