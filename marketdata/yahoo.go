// Package marketdata fetches historical bars for backtests.
package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nmoreau/tradecore/types"
)

// YahooClient reads daily bars from the Yahoo Finance chart API.
type YahooClient struct {
	client *resty.Client
}

func NewYahooClient() *YahooClient {
	return &YahooClient{
		client: resty.New().
			SetBaseURL("https://query1.finance.yahoo.com").
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "Mozilla/5.0"),
	}
}

// yahooChart is the chart API response shape. Null entries appear on
// holidays and are skipped.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars fetches daily candles for [start, end], ordered
// most-recent-last.
func (y *YahooClient) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	var out yahooChart
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"period1":  fmt.Sprintf("%d", start.Unix()),
			"period2":  fmt.Sprintf("%d", end.Unix()),
		}).
		SetResult(&out).
		Get("/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("fetch yahoo chart for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("yahoo chart error %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", out.Chart.Error.Code, out.Chart.Error.Description)
	}
	if len(out.Chart.Result) == 0 || len(out.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart: empty result for %s", symbol)
	}

	result := out.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]types.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bars = append(bars, types.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   deref(quote.Open, i),
			High:   deref(quote.High, i),
			Low:    deref(quote.Low, i),
			Close:  *quote.Close[i],
			Volume: deref(quote.Volume, i),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo chart: no usable bars for %s", symbol)
	}
	return bars, nil
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
