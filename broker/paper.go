package broker

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/nmoreau/tradecore/fees"
	"github.com/nmoreau/tradecore/types"
)

// Fill records one executed trade for reporting and persistence.
type Fill struct {
	Time   time.Time
	Symbol string
	Side   types.Side
	Qty    float64
	Price  float64
	Fee    float64
	Cash   float64 // cash after the fill
}

// Paper is an in-memory broker with perfect fills and configurable fees.
// The backtester feeds it one bar at a time; entry legs fill at the current
// price, exit legs trigger against each bar's high/low range.
type Paper struct {
	mu        sync.RWMutex
	cash      float64
	positions map[string]float64 // signed qty, positive = long
	avgPrice  map[string]float64
	lastPrice map[string]float64
	history   map[string][]types.Bar // bars seen so far, most-recent-last
	pending   []types.Order          // open limit orders and bracket exit legs
	fills     []Fill
	feeModel  fees.Model
	now       time.Time
}

// NewPaper creates a paper broker with the supplied starting cash.
func NewPaper(startCash float64, feeModel fees.Model) *Paper {
	return &Paper{
		cash:      startCash,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
		lastPrice: make(map[string]float64),
		history:   make(map[string][]types.Bar),
		feeModel:  feeModel,
	}
}

func (p *Paper) Now() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.now
}

func (p *Paper) Cash() (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash, nil
}

func (p *Paper) LastPrice(symbol string) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	price, ok := p.lastPrice[symbol]
	if !ok {
		return 0, fmt.Errorf("paper: no price for %s", symbol)
	}
	return price, nil
}

func (p *Paper) HistoricalPrices(symbol string, length int, granularity string) ([]types.Bar, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	bars := p.history[symbol]
	if len(bars) == 0 {
		return nil, fmt.Errorf("paper: no history for %s", symbol)
	}
	if length > 0 && len(bars) > length {
		bars = bars[len(bars)-length:]
	}
	out := make([]types.Bar, len(bars))
	copy(out, bars)
	return out, nil
}

// SubmitOrder fills market and bracket entries immediately at the last
// price; limit orders and bracket exit legs rest until a bar crosses them.
func (p *Paper) SubmitOrder(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	switch o.Type {
	case types.Limit:
		p.pending = append(p.pending, o)
		return nil
	case types.Bracket:
		price := p.lastPrice[o.Symbol]
		if price <= 0 {
			return fmt.Errorf("paper: no price for %s", o.Symbol)
		}
		if err := p.fill(o.Symbol, o.Side, o.Qty, price); err != nil {
			return err
		}
		if o.TakeProfit > 0 || o.StopLoss > 0 {
			p.pending = append(p.pending, exitLeg(o))
		}
		return nil
	default:
		price := p.lastPrice[o.Symbol]
		if price <= 0 {
			return fmt.Errorf("paper: no price for %s", o.Symbol)
		}
		return p.fill(o.Symbol, o.Side, o.Qty, price)
	}
}

// exitLeg flips a filled bracket entry into its resting exit order.
func exitLeg(o types.Order) types.Order {
	leg := o
	leg.Type = types.Bracket
	if o.Side == types.Buy {
		leg.Side = types.Sell
	} else {
		leg.Side = types.Buy
	}
	return leg
}

func (p *Paper) CancelOpenOrders() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
	return nil
}

func (p *Paper) SellAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for symbol, qty := range p.positions {
		if qty == 0 {
			continue
		}
		price := p.lastPrice[symbol]
		side := types.Sell
		if qty < 0 {
			side = types.Buy
		}
		if err := p.fill(symbol, side, math.Abs(qty), price); err != nil {
			return err
		}
	}
	// Exit legs protect positions that no longer exist.
	p.pending = nil
	return nil
}

// Advance feeds the next bar: updates the clock and last price, extends the
// history window, then triggers any resting orders the bar's range crossed.
func (p *Paper) Advance(symbol string, bar types.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = bar.Time
	p.lastPrice[symbol] = bar.Close
	p.history[symbol] = append(p.history[symbol], bar)
	p.trigger(symbol, bar)
}

func (p *Paper) trigger(symbol string, bar types.Bar) {
	var still []types.Order
	for _, o := range p.pending {
		if o.Symbol != symbol {
			still = append(still, o)
			continue
		}
		filled := false
		switch o.Type {
		case types.Limit:
			if o.Side == types.Buy && bar.Low <= o.LimitPrice {
				filled = p.fill(symbol, o.Side, o.Qty, o.LimitPrice) == nil
			} else if o.Side == types.Sell && bar.High >= o.LimitPrice {
				filled = p.fill(symbol, o.Side, o.Qty, o.LimitPrice) == nil
			}
		case types.Bracket:
			// Exit leg: take-profit and stop-loss race; the protective stop
			// wins when both lie inside one bar.
			if price, ok := exitPrice(o, bar); ok {
				filled = p.fill(symbol, o.Side, o.Qty, price) == nil
			}
		}
		if !filled {
			still = append(still, o)
		}
	}
	p.pending = still
}

func exitPrice(o types.Order, bar types.Bar) (float64, bool) {
	if o.Side == types.Sell { // closing a long
		if o.StopLoss > 0 && bar.Low <= o.StopLoss {
			return o.StopLoss, true
		}
		if o.TakeProfit > 0 && bar.High >= o.TakeProfit {
			return o.TakeProfit, true
		}
	} else { // closing a short
		if o.StopLoss > 0 && bar.High >= o.StopLoss {
			return o.StopLoss, true
		}
		if o.TakeProfit > 0 && bar.Low <= o.TakeProfit {
			return o.TakeProfit, true
		}
	}
	return 0, false
}

// fill applies the cash and position arithmetic of one execution.
// Callers hold the lock.
func (p *Paper) fill(symbol string, side types.Side, qty, price float64) error {
	cost := price * qty
	fee := p.feeModel.Charge(side, qty, price)
	if side == types.Buy {
		if cost+fee > p.cash {
			return fmt.Errorf("paper: insufficient cash for %s buy", symbol)
		}
		p.cash -= cost + fee
		prevQty := p.positions[symbol]
		p.positions[symbol] = prevQty + qty
		if p.positions[symbol] != 0 {
			p.avgPrice[symbol] = (p.avgPrice[symbol]*prevQty + cost) / p.positions[symbol]
		}
	} else {
		p.cash += cost - fee
		prevQty := p.positions[symbol]
		p.positions[symbol] = prevQty - qty
		if p.positions[symbol] != 0 {
			p.avgPrice[symbol] = (p.avgPrice[symbol]*prevQty - cost) / p.positions[symbol]
		}
	}
	p.fills = append(p.fills, Fill{
		Time:   p.now,
		Symbol: symbol,
		Side:   side,
		Qty:    qty,
		Price:  price,
		Fee:    fee,
		Cash:   p.cash,
	})
	return nil
}

// Position returns signed qty and average price for a symbol.
func (p *Paper) Position(symbol string) (float64, float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positions[symbol], p.avgPrice[symbol]
}

// Fills returns a copy of every executed trade.
func (p *Paper) Fills() []Fill {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}

// Equity is cash plus open positions marked at the last price.
func (p *Paper) Equity() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	eq := p.cash
	for symbol, qty := range p.positions {
		eq += qty * p.lastPrice[symbol]
	}
	return eq
}
