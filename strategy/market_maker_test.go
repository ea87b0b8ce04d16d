package strategy

import (
	"context"
	"math"
	"testing"

	"github.com/nmoreau/tradecore/testutils"
	"github.com/nmoreau/tradecore/types"
)

/*
-----------------------------------------------------------------------
Test 1 - One iteration cancels stale quotes and places a symmetric pair.
-----------------------------------------------------------------------
Cash 10,000, mid 100, base spread 0.2 %, order size 5 % of cash. A flat
price history keeps the volatility term at zero, so the quotes sit at
99.9 / 100.1 with 5 units on each side.
*/
func TestMarketMakerQuotes(t *testing.T) {
	b := testutils.NewMockBroker(10_000, 100, testutils.ConstantBars(10, 100))
	cfg := testConfig("AAPL")
	mm := NewMarketMaker(cfg, b, testutils.NewMockLogger())

	if err := mm.OnTradingIteration(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.CancelCalls() != 1 {
		t.Fatalf("expected one cancel before quoting, got %d", b.CancelCalls())
	}
	orders := b.Orders()
	if len(orders) != 2 {
		t.Fatalf("expected a quote pair, got %d orders", len(orders))
	}
	buy, sell := orders[0], orders[1]
	if buy.Side != types.Buy || sell.Side != types.Sell {
		t.Fatalf("expected buy then sell quote, got %+v", orders)
	}
	if buy.Type != types.Limit || sell.Type != types.Limit {
		t.Fatalf("quotes must be limit orders, got %s and %s", buy.Type, sell.Type)
	}
	if math.Abs(buy.LimitPrice-99.9) > 1e-9 || math.Abs(sell.LimitPrice-100.1) > 1e-9 {
		t.Fatalf("unexpected quote prices: buy %v sell %v", buy.LimitPrice, sell.LimitPrice)
	}
	if buy.Qty != 5 || sell.Qty != 5 {
		t.Fatalf("expected qty 5 per side, got %v and %v", buy.Qty, sell.Qty)
	}
}

/*
-----------------------------------------------------------------------
Test 2 - Volatile history widens the quoted spread.
-----------------------------------------------------------------------
*/
func TestMarketMakerVolatilityWidensSpread(t *testing.T) {
	bars := testutils.ConstantBars(10, 100)
	for i := range bars {
		if i%2 == 1 {
			bars[i].Close = 120
		}
	}
	b := testutils.NewMockBroker(10_000, 100, bars)
	cfg := testConfig("AAPL")
	mm := NewMarketMaker(cfg, b, testutils.NewMockLogger())

	if err := mm.OnTradingIteration(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orders := b.Orders()
	if len(orders) != 2 {
		t.Fatalf("expected a quote pair, got %d orders", len(orders))
	}
	halfBase := 100 * cfg.SpreadPct / 2
	if orders[0].LimitPrice >= 100-halfBase {
		t.Fatalf("expected a wider-than-base buy quote, got %v", orders[0].LimitPrice)
	}
	if orders[1].LimitPrice <= 100+halfBase {
		t.Fatalf("expected a wider-than-base sell quote, got %v", orders[1].LimitPrice)
	}
}

/*
-----------------------------------------------------------------------
Test 3 - Depleted cash stops quoting but is not an error.
-----------------------------------------------------------------------
*/
func TestMarketMakerSkipsWhenBroke(t *testing.T) {
	b := testutils.NewMockBroker(0.5, 100, testutils.ConstantBars(10, 100))
	mm := NewMarketMaker(testConfig("AAPL"), b, testutils.NewMockLogger())

	if err := mm.OnTradingIteration(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Orders()) != 0 {
		t.Fatalf("expected no quotes without cash, got %d", len(b.Orders()))
	}
	if b.CancelCalls() != 0 {
		t.Fatalf("expected no cancel without cash, got %d", b.CancelCalls())
	}
}

/*
-----------------------------------------------------------------------
Test 4 - Re-quoting cancels the previous pair every iteration.
-----------------------------------------------------------------------
*/
func TestMarketMakerRequotes(t *testing.T) {
	b := testutils.NewMockBroker(10_000, 100, testutils.ConstantBars(10, 100))
	mm := NewMarketMaker(testConfig("AAPL"), b, testutils.NewMockLogger())

	for i := 0; i < 3; i++ {
		if err := mm.OnTradingIteration(context.Background()); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
	if b.CancelCalls() != 3 {
		t.Fatalf("expected a cancel per iteration, got %d", b.CancelCalls())
	}
	if len(b.Orders()) != 6 {
		t.Fatalf("expected two quotes per iteration, got %d", len(b.Orders()))
	}
}
