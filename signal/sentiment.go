package signal

import (
	"context"

	"github.com/nmoreau/tradecore/sentiment"
)

// SentimentProvider signals on cached news sentiment: bullish when the
// batch label is positive with confidence above the threshold, bearish when
// negative above the same threshold. The bullish branch is checked first.
type SentimentProvider struct {
	cache     *sentiment.Cache
	threshold float64
	daysPrior int

	headlines int
	calls     int
}

func NewSentimentProvider(cache *sentiment.Cache, threshold float64, daysPrior int) *SentimentProvider {
	return &SentimentProvider{cache: cache, threshold: threshold, daysPrior: daysPrior}
}

func (p *SentimentProvider) Name() string { return "sentiment" }

func (p *SentimentProvider) Evaluate(ctx context.Context, snap Snapshot) (Signal, error) {
	to := snap.Time
	from := to.AddDate(0, 0, -p.daysPrior)
	res, err := p.cache.GetNewsAndSentiment(ctx, to, from)
	if err != nil {
		return None, err
	}
	p.headlines += res.HeadlineCount
	p.calls++

	if res.Label == sentiment.Positive && res.Confidence > p.threshold {
		return Bullish, nil
	} else if res.Label == sentiment.Negative && res.Confidence > p.threshold {
		return Bearish, nil
	}
	return None, nil
}

// AverageHeadlines reports the mean headline count per lookup over the run.
// The second return is false before the first lookup.
func (p *SentimentProvider) AverageHeadlines() (float64, bool) {
	if p.calls == 0 {
		return 0, false
	}
	return float64(p.headlines) / float64(p.calls), true
}
