package broker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nmoreau/tradecore/config"
	"github.com/nmoreau/tradecore/types"
)

// Alpaca talks to the Alpaca trading and market-data REST APIs.
type Alpaca struct {
	trading *resty.Client
	data    *resty.Client
}

// NewAlpaca builds clients for the trading endpoint named in the
// credentials (paper or live) and the shared data endpoint.
func NewAlpaca(creds config.Credentials) *Alpaca {
	auth := func(c *resty.Client) *resty.Client {
		return c.SetTimeout(30 * time.Second).
			SetHeader("APCA-API-KEY-ID", creds.APIKey).
			SetHeader("APCA-API-SECRET-KEY", creds.APISecret)
	}
	return &Alpaca{
		trading: auth(resty.New().SetBaseURL(creds.BaseURL)),
		data:    auth(resty.New().SetBaseURL("https://data.alpaca.markets")),
	}
}

func (a *Alpaca) Cash() (float64, error) {
	var account struct {
		Cash string `json:"cash"`
	}
	resp, err := a.trading.R().SetResult(&account).Get("/v2/account")
	if err := checkResp(resp, err, "get account"); err != nil {
		return 0, err
	}
	cash, err := strconv.ParseFloat(account.Cash, 64)
	if err != nil {
		return 0, fmt.Errorf("parse account cash %q: %w", account.Cash, err)
	}
	return cash, nil
}

func (a *Alpaca) LastPrice(symbol string) (float64, error) {
	var out struct {
		Trade struct {
			Price float64 `json:"p"`
		} `json:"trade"`
	}
	resp, err := a.data.R().
		SetResult(&out).
		Get(fmt.Sprintf("/v2/stocks/%s/trades/latest", symbol))
	if err := checkResp(resp, err, "get last trade"); err != nil {
		return 0, err
	}
	if out.Trade.Price <= 0 {
		return 0, fmt.Errorf("alpaca: no last trade for %s", symbol)
	}
	return out.Trade.Price, nil
}

func (a *Alpaca) HistoricalPrices(symbol string, length int, granularity string) ([]types.Bar, error) {
	timeframe := "1Day"
	if granularity == "minute" {
		timeframe = "1Min"
	}
	var out struct {
		Bars []struct {
			T time.Time `json:"t"`
			O float64   `json:"o"`
			H float64   `json:"h"`
			L float64   `json:"l"`
			C float64   `json:"c"`
			V float64   `json:"v"`
		} `json:"bars"`
	}
	resp, err := a.data.R().
		SetQueryParams(map[string]string{
			"timeframe": timeframe,
			"limit":     strconv.Itoa(length),
		}).
		SetResult(&out).
		Get(fmt.Sprintf("/v2/stocks/%s/bars", symbol))
	if err := checkResp(resp, err, "get bars"); err != nil {
		return nil, err
	}
	bars := make([]types.Bar, len(out.Bars))
	for i, b := range out.Bars {
		bars[i] = types.Bar{Time: b.T, Open: b.O, High: b.H, Low: b.L, Close: b.C, Volume: b.V}
	}
	return bars, nil
}

func (a *Alpaca) SubmitOrder(o types.Order) error {
	body := map[string]any{
		"symbol":        o.Symbol,
		"qty":           strconv.FormatFloat(o.Qty, 'f', -1, 64),
		"side":          strings.ToLower(string(o.Side)),
		"time_in_force": "day",
	}
	switch o.Type {
	case types.Bracket:
		body["type"] = "market"
		body["order_class"] = "bracket"
		if o.TakeProfit > 0 {
			body["take_profit"] = map[string]string{"limit_price": formatPrice(o.TakeProfit)}
		}
		if o.StopLoss > 0 {
			body["stop_loss"] = map[string]string{"stop_price": formatPrice(o.StopLoss)}
		}
	case types.Limit:
		body["type"] = "limit"
		body["limit_price"] = formatPrice(o.LimitPrice)
	default:
		body["type"] = "market"
	}
	resp, err := a.trading.R().SetBody(body).Post("/v2/orders")
	return checkResp(resp, err, "submit order")
}

func (a *Alpaca) CancelOpenOrders() error {
	resp, err := a.trading.R().Delete("/v2/orders")
	return checkResp(resp, err, "cancel open orders")
}

func (a *Alpaca) SellAll() error {
	resp, err := a.trading.R().Delete("/v2/positions")
	return checkResp(resp, err, "close all positions")
}

// Asset is one tradable instrument as listed by the broker.
type Asset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Class    string `json:"class"`
}

// ListAssets enumerates active assets of the given class
// (us_equity or crypto).
func (a *Alpaca) ListAssets(assetClass string) ([]Asset, error) {
	var assets []Asset
	resp, err := a.trading.R().
		SetQueryParams(map[string]string{
			"asset_class": assetClass,
			"status":      "active",
		}).
		SetResult(&assets).
		Get("/v2/assets")
	if err := checkResp(resp, err, "list assets"); err != nil {
		return nil, err
	}
	return assets, nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func checkResp(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("alpaca: %s: %w", op, err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("alpaca: %s: status %d: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}
