package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/logger"
	"github.com/nmoreau/tradecore/metrics"
	"github.com/nmoreau/tradecore/risk"
	"github.com/nmoreau/tradecore/types"
)

// MarketMaker re-quotes a symmetric two-sided book every iteration. It has
// no direction state: open orders are cancelled and replaced with a buy at
// mid*(1-spread/2) and a sell at mid*(1+spread/2), each sized as a fraction
// of cash. When a volatility period is configured the spread widens with
// the volatility estimate, floored at the base spread.
type MarketMaker struct {
	cfg    config.StrategyConfig
	broker broker.Broker
	log    logger.Logger
	quotes int
}

func NewMarketMaker(cfg config.StrategyConfig, b broker.Broker, log logger.Logger) *MarketMaker {
	return &MarketMaker{cfg: cfg, broker: b, log: log}
}

func (m *MarketMaker) Name() string { return "market-making" }

func (m *MarketMaker) OnTradingIteration(ctx context.Context) error {
	if err := m.iterate(ctx); err != nil {
		metrics.IterationErrors.WithLabelValues(m.Name()).Inc()
		return err
	}
	return nil
}

func (m *MarketMaker) iterate(ctx context.Context) error {
	cash, err := m.broker.Cash()
	if err != nil {
		return fmt.Errorf("get cash: %w", err)
	}
	metrics.EquityGauge.Set(cash)
	if cash < 1 {
		m.log.Info("skip_insufficient_cash", logger.Float64("cash", cash))
		return nil
	}

	lastPrice, err := m.broker.LastPrice(m.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("get last price: %w", err)
	}

	spread := m.cfg.SpreadPct
	if m.cfg.VolatilityPeriod > 0 {
		bars, err := m.broker.HistoricalPrices(m.cfg.Symbol, m.cfg.VolatilityPeriod, "day")
		if err != nil {
			return fmt.Errorf("get spread history: %w", err)
		}
		vol, err := risk.Volatility(types.Closes(bars), m.cfg.VolatilityPeriod)
		if err != nil {
			return err
		}
		spread = math.Max(spread, vol*m.cfg.ATRMultiplier)
	}

	if err := m.broker.CancelOpenOrders(); err != nil {
		return fmt.Errorf("cancel open orders: %w", err)
	}

	buyPrice := lastPrice * (1 - spread/2)
	sellPrice := lastPrice * (1 + spread/2)
	qty := math.RoundToEven(cash * m.cfg.OrderSizePct / lastPrice)
	if qty == 0 {
		m.log.Info("skip_zero_quantity", logger.String("symbol", m.cfg.Symbol))
		return nil
	}

	for _, o := range []types.Order{
		{Symbol: m.cfg.Symbol, Side: types.Buy, Qty: qty, Type: types.Limit, LimitPrice: buyPrice, Comment: "mm quote"},
		{Symbol: m.cfg.Symbol, Side: types.Sell, Qty: qty, Type: types.Limit, LimitPrice: sellPrice, Comment: "mm quote"},
	} {
		if err := m.broker.SubmitOrder(o); err != nil {
			return fmt.Errorf("submit %s quote: %w", o.Side, err)
		}
		metrics.OrdersSubmitted.WithLabelValues(m.Name()).Inc()
	}
	m.quotes++
	m.log.Info("quotes_placed",
		logger.String("symbol", m.cfg.Symbol),
		logger.Float64("buy", buyPrice),
		logger.Float64("sell", sellPrice),
		logger.Float64("qty", qty),
		logger.Float64("spread", spread),
	)
	return nil
}

func (m *MarketMaker) OnEnd() {
	m.log.Info("strategy_end",
		logger.String("strategy", m.Name()),
		logger.Int("iterations_quoted", m.quotes),
	)
}
