package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nmoreau/tradecore/backtest"
	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/fees"
	"github.com/nmoreau/tradecore/logger"
	"github.com/nmoreau/tradecore/marketdata"
	"github.com/nmoreau/tradecore/news"
	"github.com/nmoreau/tradecore/recorder"
	"github.com/nmoreau/tradecore/sentiment"
	"github.com/nmoreau/tradecore/strategy"
)

func newBacktestCmd() *cobra.Command {
	var flags strategyFlags
	var (
		startDate string
		endDate   string
		feeModel  string
		dbPath    string
		startCash float64
	)

	cmd := &cobra.Command{
		Use:   "backtest <symbol>",
		Short: "Run a backtest for the strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewZapLogger()
			if err != nil {
				return err
			}
			cfg, err := flags.toConfig(args[0])
			if err != nil {
				return err
			}

			start, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
			end := time.Now().UTC()
			if endDate != "" {
				end, err = time.Parse("2006-01-02", endDate)
				if err != nil {
					return fmt.Errorf("parse --end: %w", err)
				}
				end = end.Add(24*time.Hour - time.Second)
			}
			if end.Before(start) {
				return fmt.Errorf("--end (%s) is before --start (%s)", endDate, startDate)
			}

			model := fees.Free()
			if feeModel != "" {
				model, err = fees.Lookup(feeModel)
				if err != nil {
					return err
				}
			}

			var rec recorder.Recorder = recorder.Noop{}
			if dbPath != "" {
				sq, err := recorder.NewSQLite(dbPath)
				if err != nil {
					return err
				}
				defer sq.Close()
				rec = sq
			}

			newsSource, sentModel, err := sentimentDeps(flags.strategyName)
			if err != nil {
				return err
			}

			paper := broker.NewPaper(startCash, model)
			strat, err := strategy.New(flags.strategyName, cfg, strategy.Deps{
				Broker: paper,
				Clock:  paper,
				News:   newsSource,
				Model:  sentModel,
				Log:    log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Fetch extra leading bars so moving averages and the Fourier
			// window are warm before the first trading iteration.
			warmup := warmupDays(cfg)
			bars, err := marketdata.NewYahooClient().DailyBars(ctx, cfg.Symbol, start.AddDate(0, 0, -warmup), end)
			if err != nil {
				return err
			}

			engine := backtest.NewEngine(cfg.Symbol, paper, strat, rec, log)
			res, err := engine.Run(ctx, bars, start)
			if err != nil {
				return err
			}

			fmt.Printf("Backtest %s on %s (%s to %s)\n", flags.strategyName, cfg.Symbol,
				start.Format("2006-01-02"), end.Format("2006-01-02"))
			fmt.Printf("  start cash:   %12.2f\n", res.StartCash)
			fmt.Printf("  final cash:   %12.2f\n", res.FinalCash)
			fmt.Printf("  final equity: %12.2f\n", res.FinalEquity)
			fmt.Printf("  return:       %11.2f%%\n", res.Return*100)
			fmt.Printf("  trades:       %8d\n", res.Trades)
			fmt.Printf("  fees paid:    %12.2f\n", res.FeesPaid)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&startDate, "start", "", "backtest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "backtest end date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&feeModel, "fees", "", "broker fee model ("+strings.Join(fees.Names(), "|")+")")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite path for recording fills; empty disables")
	cmd.Flags().Float64Var(&startCash, "cash", 100000, "starting cash")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

// warmupDays covers the longest lookback any provider may request, padded
// for weekends and holidays.
func warmupDays(cfg config.StrategyConfig) int {
	max := cfg.MALongPeriod
	if cfg.FourierWindow > max {
		max = cfg.FourierWindow
	}
	if cfg.MovingAveragePeriod > max {
		max = cfg.MovingAveragePeriod
	}
	if cfg.VolatilityPeriod > max {
		max = cfg.VolatilityPeriod
	}
	return max*7/5 + 10
}

// sentimentDeps wires the news API and classifier only when the sentiment
// strategy asks for them; backtests of the other strategies run without
// credentials. The on-disk cache keeps repeat sentiment runs cheap.
func sentimentDeps(strategyName string) (news.Source, sentiment.Model, error) {
	if strategyName != "sentiment" {
		return nil, nil, nil
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, nil, err
	}
	return news.NewAlpacaSource(creds.APIKey, creds.APISecret),
		sentiment.NewRemoteModel(modelURL(), os.Getenv("MODEL_TOKEN")),
		nil
}
