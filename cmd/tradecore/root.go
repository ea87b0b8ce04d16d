package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/strategy"
)

// strategyFlags collects the knobs shared by run and backtest.
type strategyFlags struct {
	configFile         string
	strategyName       string
	cashAtRisk         float64
	sleeptime          time.Duration
	daysPrior          int
	newsLimit          int
	takeProfit         float64
	stopLoss           float64
	sentimentThreshold float64
	volatilityThresh   float64
	volatilityPeriod   int
	volatilityFactor   float64
	maPeriod           int
	maShort            int
	maLong             int
	fourierWindow      int
	fourierComponents  int
	spread             float64
	orderSize          float64
	cacheDir           string
}

func (f *strategyFlags) register(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().StringVar(&f.configFile, "config", "", "optional YAML config file")
	cmd.Flags().StringVarP(&f.strategyName, "strategy", "t", "sentiment",
		"strategy to run ("+strings.Join(strategy.Names(), "|")+")")
	cmd.Flags().Float64VarP(&f.cashAtRisk, "cash-at-risk", "c", def.CashAtRisk, "fraction of cash to risk on each trade")
	cmd.Flags().DurationVarP(&f.sleeptime, "sleeptime", "s", def.SleepTime, "time between trading iterations")
	cmd.Flags().IntVarP(&f.daysPrior, "days-prior", "d", def.DaysPriorForNews, "days of news history per sentiment lookup")
	cmd.Flags().IntVar(&f.newsLimit, "news-limit", def.NewsLimit, "max headlines fetched per lookup")
	cmd.Flags().Float64Var(&f.takeProfit, "take-profit", def.TakeProfitPct, "take-profit threshold")
	cmd.Flags().Float64Var(&f.stopLoss, "stop-loss", def.StopLossPct, "stop-loss threshold")
	cmd.Flags().Float64Var(&f.sentimentThreshold, "sentiment-threshold", def.SentimentThreshold, "confidence needed to act on sentiment")
	cmd.Flags().Float64Var(&f.volatilityThresh, "volatility-threshold", def.VolatilityThresh, "skip iterations above this volatility")
	cmd.Flags().IntVar(&f.volatilityPeriod, "volatility-period", def.VolatilityPeriod, "closes used by the volatility estimator")
	cmd.Flags().Float64Var(&f.volatilityFactor, "volatility-factor", def.VolatilityFactor, "bracket widening per unit of volatility")
	cmd.Flags().IntVar(&f.maPeriod, "ma-period", def.MovingAveragePeriod, "momentum moving-average period")
	cmd.Flags().IntVar(&f.maShort, "ma-short", def.MAShortPeriod, "price-action short MA period")
	cmd.Flags().IntVar(&f.maLong, "ma-long", def.MALongPeriod, "price-action long MA period")
	cmd.Flags().IntVar(&f.fourierWindow, "fourier-window", def.FourierWindow, "closes per Fourier filter window")
	cmd.Flags().IntVar(&f.fourierComponents, "fourier-components", def.FourierComponents, "low-frequency components kept by the filter")
	cmd.Flags().Float64Var(&f.spread, "spread", def.SpreadPct, "market-maker quoted spread")
	cmd.Flags().Float64Var(&f.orderSize, "order-size", def.OrderSizePct, "market-maker order size as a fraction of cash")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", def.CacheDir, "sentiment cache directory")
}

// toConfig folds file values and flags into a validated-later config.
func (f *strategyFlags) toConfig(symbol string) (config.StrategyConfig, error) {
	cfg := config.Default()
	if f.configFile != "" {
		if err := config.LoadFile(f.configFile, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.Symbol = symbol
	cfg.CashAtRisk = f.cashAtRisk
	cfg.SleepTime = f.sleeptime
	cfg.DaysPriorForNews = f.daysPrior
	cfg.NewsLimit = f.newsLimit
	cfg.TakeProfitPct = f.takeProfit
	cfg.StopLossPct = f.stopLoss
	cfg.SentimentThreshold = f.sentimentThreshold
	cfg.VolatilityThresh = f.volatilityThresh
	cfg.VolatilityPeriod = f.volatilityPeriod
	cfg.VolatilityFactor = f.volatilityFactor
	cfg.MovingAveragePeriod = f.maPeriod
	cfg.MAShortPeriod = f.maShort
	cfg.MALongPeriod = f.maLong
	cfg.FourierWindow = f.fourierWindow
	cfg.FourierComponents = f.fourierComponents
	cfg.SpreadPct = f.spread
	cfg.OrderSizePct = f.orderSize
	cfg.CacheDir = f.cacheDir
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tradecore",
		Short:         "Run or backtest retail trading strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newBacktestCmd(), newListCmd())
	return root
}
