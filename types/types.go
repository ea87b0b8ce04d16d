package types

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderType distinguishes plain fills from bracketed entries.
type OrderType string

const (
	Market  OrderType = "market"
	Limit   OrderType = "limit"
	Bracket OrderType = "bracket"
)

// Order is a single immutable trade instruction. For bracket orders
// TakeProfit / StopLoss describe the exit legs; a zero price disables the
// corresponding leg.
type Order struct {
	Symbol     string
	Side       Side
	Qty        float64
	Type       OrderType
	LimitPrice float64 // limit orders only; 0 = market
	TakeProfit float64
	StopLoss   float64
	// meta
	Comment string
}

// Bar is one OHLCV candle. Bar sequences are ordered most-recent-last.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes extracts the closing prices of a bar sequence, preserving order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
