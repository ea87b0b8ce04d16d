// Package broker defines the brokerage collaborator consumed by the
// strategies, plus a paper implementation for backtests and an Alpaca REST
// implementation for live runs.
package broker

import (
	"time"

	"github.com/nmoreau/tradecore/types"
)

// Broker is the surface the decision core needs: fresh quotes, cash,
// historical bars and order execution. Every method is a blocking call from
// the core's perspective; errors abort only the current iteration.
type Broker interface {
	Cash() (float64, error)
	LastPrice(symbol string) (float64, error)
	// HistoricalPrices returns up to length bars at the given granularity,
	// ordered most-recent-last.
	HistoricalPrices(symbol string, length int, granularity string) ([]types.Bar, error)
	SubmitOrder(o types.Order) error
	CancelOpenOrders() error
	// SellAll liquidates every open position at market.
	SellAll() error
}

// Clock supplies the current time: real for live trading, simulated when
// the backtester replays historical timestamps.
type Clock interface {
	Now() time.Time
}

// RealClock is the live-trading clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
