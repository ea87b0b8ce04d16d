package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/logger"
	"github.com/nmoreau/tradecore/news"
	"github.com/nmoreau/tradecore/scheduler"
	"github.com/nmoreau/tradecore/sentiment"
	"github.com/nmoreau/tradecore/strategy"
)

const defaultModelURL = "https://api-inference.huggingface.co/models/ProsusAI/finbert"

func newRunCmd() *cobra.Command {
	var flags strategyFlags
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run <symbol>",
		Short: "Run the strategy live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.NewZapLogger()
			if err != nil {
				return err
			}
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			cfg, err := flags.toConfig(args[0])
			if err != nil {
				return err
			}

			alpaca := broker.NewAlpaca(creds)
			strat, err := strategy.New(flags.strategyName, cfg, strategy.Deps{
				Broker: alpaca,
				Clock:  broker.RealClock{},
				News:   news.NewAlpacaSource(creds.APIKey, creds.APISecret),
				Model:  sentiment.NewRemoteModel(modelURL(), os.Getenv("MODEL_TOKEN")),
				Log:    log,
			})
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, log)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return scheduler.New(strat, log).Start(ctx, cfg.SleepTime)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "prometheus listen address; empty disables")
	return cmd
}

func modelURL() string {
	if url := os.Getenv("MODEL_URL"); url != "" {
		return url
	}
	return defaultModelURL
}

func serveMetrics(addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics_server_stopped", logger.Err(err))
	}
}
