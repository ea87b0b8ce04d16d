package signal

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/types"
)

// MomentumProvider signals on the last price relative to a simple moving
// average of daily closes: above is bullish, below is bearish.
type MomentumProvider struct {
	broker broker.Broker
	period int
}

func NewMomentumProvider(b broker.Broker, period int) *MomentumProvider {
	return &MomentumProvider{broker: b, period: period}
}

func (p *MomentumProvider) Name() string { return "momentum" }

func (p *MomentumProvider) Evaluate(ctx context.Context, snap Snapshot) (Signal, error) {
	bars, err := p.broker.HistoricalPrices(snap.Symbol, p.period, "day")
	if err != nil {
		return None, err
	}
	if len(bars) == 0 {
		return None, fmt.Errorf("momentum: no bars for %s", snap.Symbol)
	}
	ma := stat.Mean(types.Closes(bars), nil)
	switch {
	case snap.LastPrice > ma:
		return Bullish, nil
	case snap.LastPrice < ma:
		return Bearish, nil
	}
	return None, nil
}

// PriceActionProvider signals on a short moving average crossing a long
// one: short above long confirms an uptrend, below a downtrend. Both
// averages come from the same long-period window of daily closes.
type PriceActionProvider struct {
	broker      broker.Broker
	shortPeriod int
	longPeriod  int
}

func NewPriceActionProvider(b broker.Broker, shortPeriod, longPeriod int) *PriceActionProvider {
	return &PriceActionProvider{broker: b, shortPeriod: shortPeriod, longPeriod: longPeriod}
}

func (p *PriceActionProvider) Name() string { return "price-action" }

func (p *PriceActionProvider) Evaluate(ctx context.Context, snap Snapshot) (Signal, error) {
	bars, err := p.broker.HistoricalPrices(snap.Symbol, p.longPeriod, "day")
	if err != nil {
		return None, err
	}
	closes := types.Closes(bars)
	if len(closes) < p.shortPeriod {
		return None, fmt.Errorf("price-action: %d closes for %s, need %d", len(closes), snap.Symbol, p.shortPeriod)
	}
	longMA := stat.Mean(closes, nil)
	shortMA := stat.Mean(closes[len(closes)-p.shortPeriod:], nil)
	switch {
	case shortMA > longMA:
		return Bullish, nil
	case shortMA < longMA:
		return Bearish, nil
	}
	return None, nil
}
