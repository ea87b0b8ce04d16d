// Package news retrieves headlines for a symbol over a date window.
package news

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nmoreau/tradecore/metrics"
)

// Source fetches at most limit headlines for symbol between start and end,
// in the order the provider delivers them.
type Source interface {
	GetNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]string, error)
}

// AlpacaSource reads headlines from the Alpaca news API.
type AlpacaSource struct {
	client *resty.Client
}

// NewAlpacaSource builds a client against the Alpaca data endpoint.
func NewAlpacaSource(apiKey, apiSecret string) *AlpacaSource {
	client := resty.New().
		SetBaseURL("https://data.alpaca.markets/v1beta1").
		SetTimeout(30 * time.Second).
		SetHeader("APCA-API-KEY-ID", apiKey).
		SetHeader("APCA-API-SECRET-KEY", apiSecret)
	return &AlpacaSource{client: client}
}

type newsResponse struct {
	News []struct {
		Headline string `json:"headline"`
	} `json:"news"`
}

// GetNews implements Source. One attempt per call; fetch failures propagate
// to the caller and abort the current trading iteration.
func (s *AlpacaSource) GetNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]string, error) {
	var out newsResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbols": symbol,
			"start":   start.Format("2006-01-02"),
			"end":     end.Format("2006-01-02"),
			"limit":   fmt.Sprintf("%d", limit),
		}).
		SetResult(&out).
		Get("/news")
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news API error %d: %s", resp.StatusCode(), resp.String())
	}
	headlines := make([]string, 0, len(out.News))
	for _, n := range out.News {
		headlines = append(headlines, n.Headline)
	}
	metrics.NewsHeadlinesFetched.Add(float64(len(headlines)))
	return headlines, nil
}
