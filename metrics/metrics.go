package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_orders_submitted_total",
			Help: "Total number of orders submitted (by strategy).",
		},
		[]string{"strategy"},
	)

	IterationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_iteration_errors_total",
			Help: "Trading iterations aborted by an error (by strategy).",
		},
		[]string{"strategy"},
	)

	SentimentCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecore_sentiment_cache_hits_total",
			Help: "Sentiment cache lookups served from disk.",
		},
	)

	SentimentCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecore_sentiment_cache_misses_total",
			Help: "Sentiment cache lookups that required a news fetch.",
		},
	)

	NewsHeadlinesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecore_news_headlines_fetched_total",
			Help: "Headlines retrieved from the news source.",
		},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradecore_equity",
			Help: "Current cash balance reported by the broker.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersSubmitted,
		IterationErrors,
		SentimentCacheHits,
		SentimentCacheMisses,
		NewsHeadlinesFetched,
		EquityGauge,
	)
}
