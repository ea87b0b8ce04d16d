package strategy

import (
	"context"
	"time"

	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/signal"
	"github.com/nmoreau/tradecore/testutils"
)

// scriptedProvider replays a fixed signal sequence and counts evaluations,
// so tests can drive the state machine without market data.
type scriptedProvider struct {
	signals []signal.Signal
	err     error
	calls   int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Evaluate(ctx context.Context, snap signal.Snapshot) (signal.Signal, error) {
	p.calls++
	if p.err != nil {
		return signal.None, p.err
	}
	if len(p.signals) == 0 {
		return signal.None, nil
	}
	s := p.signals[0]
	p.signals = p.signals[1:]
	return s, nil
}

func testConfig(symbol string) config.StrategyConfig {
	cfg := config.Default()
	cfg.Symbol = symbol
	return cfg
}

func testClock() testutils.FixedClock {
	return testutils.FixedClock{T: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
}

// buildCore assembles a decision core around a scripted provider with the
// default bracket multipliers and no volatility estimation.
func buildCore(cfg config.StrategyConfig, b *testutils.MockBroker, p *scriptedProvider, useVolatility bool) *Core {
	brackets := Brackets{
		BuyTP: cfg.BuyTakeProfitMult(), BuySL: cfg.BuyStopLossMult(),
		SellTP: cfg.SellTakeProfitMult(), SellSL: cfg.SellStopLossMult(),
		VolFactor: cfg.VolatilityFactor,
	}
	return NewCore("scripted", cfg, b, testClock(), p, brackets, useVolatility, testutils.NewMockLogger())
}
