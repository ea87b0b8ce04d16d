// Package strategy contains the per-iteration decision logic: one
// polymorphic direction-taking core parameterized by a signal provider,
// plus the non-directional market maker.
package strategy

import (
	"context"
	"fmt"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/logger"
	"github.com/nmoreau/tradecore/metrics"
	"github.com/nmoreau/tradecore/risk"
	"github.com/nmoreau/tradecore/signal"
	"github.com/nmoreau/tradecore/types"
)

// Position is the explicit strategy state. Transitions happen only on
// successful order submission.
type Position int

const (
	Flat Position = iota
	Long
	Short
)

func (p Position) String() string {
	switch p {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Strategy is one invocation target for the scheduler or backtester.
type Strategy interface {
	Name() string
	// OnTradingIteration runs one full decision pass. An error aborts only
	// this iteration; the scheduler decides whether the next one runs.
	OnTradingIteration(ctx context.Context) error
	// OnEnd reports the run summary once the scheduler stops.
	OnEnd()
}

// Brackets holds the exit-leg multipliers for each entry direction and the
// scalar that widens the bracket with volatility. A zero multiplier
// disables that leg.
type Brackets struct {
	BuyTP, BuySL   float64
	SellTP, SellSL float64
	VolFactor      float64
}

// Core drives one symbol through the entry/exit state machine:
// per iteration it gates on cash and volatility, asks the signal provider
// for a direction, flips out of an opposite position first, then submits a
// sized bracket order.
type Core struct {
	name     string
	cfg      config.StrategyConfig
	broker   broker.Broker
	clock    broker.Clock
	provider signal.Provider
	brackets Brackets
	log      logger.Logger

	// useVolatility enables the estimator: sizing shrinks with volatility
	// and the risk gate can fire. Sentiment and Fourier run without it.
	useVolatility bool

	position Position
}

// NewCore wires a decision core around a signal provider. Config must have
// been validated; the constructor only assembles.
func NewCore(name string, cfg config.StrategyConfig, b broker.Broker, clock broker.Clock,
	provider signal.Provider, brackets Brackets, useVolatility bool, log logger.Logger) *Core {
	return &Core{
		name:          name,
		cfg:           cfg,
		broker:        b,
		clock:         clock,
		provider:      provider,
		brackets:      brackets,
		log:           log,
		useVolatility: useVolatility,
		position:      Flat,
	}
}

// Position exposes the current state for tests and reporting.
func (c *Core) Position() Position { return c.position }

func (c *Core) Name() string { return c.name }

func (c *Core) OnTradingIteration(ctx context.Context) error {
	if err := c.iterate(ctx); err != nil {
		metrics.IterationErrors.WithLabelValues(c.name).Inc()
		return err
	}
	return nil
}

func (c *Core) iterate(ctx context.Context) error {
	cash, err := c.broker.Cash()
	if err != nil {
		return fmt.Errorf("get cash: %w", err)
	}
	metrics.EquityGauge.Set(cash)

	lastPrice, err := c.broker.LastPrice(c.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("get last price: %w", err)
	}

	var volatility float64
	if c.useVolatility && c.cfg.VolatilityPeriod > 0 {
		volatility, err = c.estimateVolatility()
		if err != nil {
			return err
		}
	}

	if cash <= lastPrice {
		c.log.Info("skip_insufficient_cash",
			logger.String("symbol", c.cfg.Symbol),
			logger.Float64("cash", cash),
			logger.Float64("last_price", lastPrice),
		)
		return nil
	}
	if c.useVolatility && c.cfg.VolatilityThresh > 0 && volatility > c.cfg.VolatilityThresh {
		c.log.Info("skip_volatility_gate",
			logger.String("symbol", c.cfg.Symbol),
			logger.Float64("volatility", volatility),
			logger.Float64("threshold", c.cfg.VolatilityThresh),
		)
		return nil
	}

	sig, err := c.provider.Evaluate(ctx, signal.Snapshot{
		Symbol:     c.cfg.Symbol,
		Time:       c.clock.Now(),
		LastPrice:  lastPrice,
		Cash:       cash,
		Volatility: volatility,
	})
	if err != nil {
		return fmt.Errorf("evaluate %s signal: %w", c.provider.Name(), err)
	}

	qty, err := risk.Quantity(cash, lastPrice, c.cfg.CashAtRisk, volatility)
	if err != nil {
		return err
	}
	if qty == 0 {
		c.log.Info("skip_zero_quantity", logger.String("symbol", c.cfg.Symbol))
		return nil
	}

	// Bullish before bearish: with a valid config both cannot hold, but the
	// precedence is deliberate and mirrors the else-if evaluation order.
	if sig == signal.Bullish && c.position != Long {
		return c.enter(types.Buy, Long, qty, lastPrice, volatility)
	} else if sig == signal.Bearish && c.position != Short {
		return c.enter(types.Sell, Short, qty, lastPrice, volatility)
	}
	return nil
}

// enter liquidates an opposite position, submits the bracket and moves the
// state machine.
func (c *Core) enter(side types.Side, next Position, qty, lastPrice, volatility float64) error {
	if (next == Long && c.position == Short) || (next == Short && c.position == Long) {
		if err := c.broker.SellAll(); err != nil {
			return fmt.Errorf("liquidate before flip: %w", err)
		}
		c.position = Flat
	}

	tpMult, slMult := c.brackets.BuyTP, c.brackets.BuySL
	if side == types.Sell {
		tpMult, slMult = c.brackets.SellTP, c.brackets.SellSL
	}
	order := risk.BuildBracket(c.cfg.Symbol, side, qty, lastPrice, tpMult, slMult, volatility, c.brackets.VolFactor)
	order.Comment = c.name + " entry"

	if err := c.broker.SubmitOrder(order); err != nil {
		c.log.Error("order_submit_failed",
			logger.String("symbol", order.Symbol),
			logger.String("side", string(order.Side)),
			logger.Float64("qty", order.Qty),
			logger.Err(err),
		)
		return err
	}
	c.position = next
	c.log.Info("order_submitted",
		logger.String("symbol", order.Symbol),
		logger.String("side", string(order.Side)),
		logger.Float64("qty", order.Qty),
		logger.Float64("take_profit", order.TakeProfit),
		logger.Float64("stop_loss", order.StopLoss),
		logger.String("position", c.position.String()),
	)
	metrics.OrdersSubmitted.WithLabelValues(c.name).Inc()
	return nil
}

func (c *Core) estimateVolatility() (float64, error) {
	bars, err := c.broker.HistoricalPrices(c.cfg.Symbol, c.cfg.VolatilityPeriod, "day")
	if err != nil {
		return 0, fmt.Errorf("get volatility history: %w", err)
	}
	vol, err := risk.Volatility(types.Closes(bars), c.cfg.VolatilityPeriod)
	if err != nil {
		return 0, err
	}
	return vol, nil
}

func (c *Core) OnEnd() {
	if p, ok := c.provider.(*signal.SentimentProvider); ok {
		if avg, ok := p.AverageHeadlines(); ok {
			c.log.Info("average_headlines_per_call", logger.Float64("avg", avg))
		}
	}
	c.log.Info("strategy_end",
		logger.String("strategy", c.name),
		logger.String("position", c.position.String()),
	)
}
