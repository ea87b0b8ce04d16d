package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/logger"
	"github.com/nmoreau/tradecore/news"
	"github.com/nmoreau/tradecore/sentiment"
	"github.com/nmoreau/tradecore/signal"
)

// ErrUnknown is returned for a strategy name with no builder. Raised at
// construction time, fatal at startup.
var ErrUnknown = errors.New("strategy: unknown strategy")

// Deps are the collaborators a builder may wire into its strategy.
type Deps struct {
	Broker broker.Broker
	Clock  broker.Clock
	News   news.Source
	Model  sentiment.Model
	Log    logger.Logger
}

type builder func(cfg config.StrategyConfig, deps Deps) Strategy

// builders is the strategy object table; ad-hoc subclass hierarchies are
// exactly what this replaces.
var builders = map[string]builder{
	"sentiment": func(cfg config.StrategyConfig, deps Deps) Strategy {
		cache := sentiment.NewCache(cfg.CacheDir, cfg.Symbol, cfg.NewsLimit,
			deps.News, sentiment.NewClassifier(deps.Model))
		provider := signal.NewSentimentProvider(cache, cfg.SentimentThreshold, cfg.DaysPriorForNews)
		brackets := Brackets{
			BuyTP: cfg.BuyTakeProfitMult(), BuySL: cfg.BuyStopLossMult(),
			SellTP: cfg.SellTakeProfitMult(), SellSL: cfg.SellStopLossMult(),
		}
		return NewCore("sentiment", cfg, deps.Broker, deps.Clock, provider, brackets, false, deps.Log)
	},
	"momentum": func(cfg config.StrategyConfig, deps Deps) Strategy {
		provider := signal.NewMomentumProvider(deps.Broker, cfg.MovingAveragePeriod)
		brackets := Brackets{
			BuyTP: cfg.BuyTakeProfitMult(), BuySL: cfg.BuyStopLossMult(),
			SellTP: cfg.SellTakeProfitMult(), SellSL: cfg.SellStopLossMult(),
			VolFactor: cfg.VolatilityFactor,
		}
		return NewCore("momentum", cfg, deps.Broker, deps.Clock, provider, brackets, true, deps.Log)
	},
	"price-action": func(cfg config.StrategyConfig, deps Deps) Strategy {
		provider := signal.NewPriceActionProvider(deps.Broker, cfg.MAShortPeriod, cfg.MALongPeriod)
		// Stop-loss only: the take-profit legs stay disabled and the stop
		// sits a fixed volatility-factor fraction away from entry.
		brackets := Brackets{
			BuySL:  1 - cfg.VolatilityFactor,
			SellSL: 1 + cfg.VolatilityFactor,
		}
		return NewCore("price-action", cfg, deps.Broker, deps.Clock, provider, brackets, true, deps.Log)
	},
	"fourier": func(cfg config.StrategyConfig, deps Deps) Strategy {
		provider := signal.NewFourierProvider(deps.Broker, cfg.FourierWindow, cfg.FourierComponents)
		brackets := Brackets{
			BuyTP: cfg.BuyTakeProfitMult(), BuySL: cfg.BuyStopLossMult(),
			SellTP: cfg.SellTakeProfitMult(), SellSL: cfg.SellStopLossMult(),
		}
		return NewCore("fourier", cfg, deps.Broker, deps.Clock, provider, brackets, false, deps.Log)
	},
	"market-making": func(cfg config.StrategyConfig, deps Deps) Strategy {
		return NewMarketMaker(cfg, deps.Broker, deps.Log)
	},
}

// New builds the named strategy after validating the config.
func New(name string, cfg config.StrategyConfig, deps Deps) (Strategy, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return build(cfg, deps), nil
}

// Names lists the registered strategies, sorted for stable CLI output.
func Names() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
