package strategy

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/nmoreau/tradecore/testutils"
	"github.com/nmoreau/tradecore/types"
)

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New("turtle", testConfig("AAPL"), Deps{})
	if !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig("AAPL")
	cfg.CashAtRisk = 0
	if _, err := New("momentum", cfg, Deps{}); err == nil {
		t.Fatalf("expected a validation error for zero cash_at_risk")
	}
}

func TestNamesStableAndComplete(t *testing.T) {
	names := Names()
	if !sort.StringsAreSorted(names) {
		t.Fatalf("expected sorted names, got %v", names)
	}
	want := []string{"fourier", "market-making", "momentum", "price-action", "sentiment"}
	if len(names) != len(want) {
		t.Fatalf("expected %d strategies, got %v", len(want), names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

/*
-----------------------------------------------------------------------
End-to-end sentiment build: very confident positive news above the
0.999 threshold buys 50 units and fetches the news exactly once.
-----------------------------------------------------------------------
*/
func TestSentimentStrategyEndToEnd(t *testing.T) {
	b := testutils.NewMockBroker(10_000, 100, nil)
	src := &testutils.MockSource{Headlines: []string{"blowout earnings", "guidance raised"}}
	cfg := testConfig("AAPL")
	cfg.SentimentThreshold = 0.999
	cfg.CacheDir = t.TempDir()

	strat, err := New("sentiment", cfg, Deps{
		Broker: b,
		Clock:  testClock(),
		News:   src,
		Model:  &testutils.StubModel{Row: []float64{20, 0, 0}},
		Log:    testutils.NewMockLogger(),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := strat.OnTradingIteration(context.Background()); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}

	orders := b.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected one entry across repeated bullish iterations, got %d", len(orders))
	}
	if orders[0].Side != types.Buy || orders[0].Qty != 50 {
		t.Fatalf("expected buy of 50 units, got %+v", orders[0])
	}
	if src.Fetches != 1 {
		t.Fatalf("expected one news fetch thanks to the cache, got %d", src.Fetches)
	}
	if b.SellAllCalls() != 0 {
		t.Fatalf("expected no liquidation on a fresh entry")
	}
}

/*
-----------------------------------------------------------------------
Low-confidence sentiment stays flat.
-----------------------------------------------------------------------
*/
func TestSentimentStrategyBelowThreshold(t *testing.T) {
	b := testutils.NewMockBroker(10_000, 100, nil)
	cfg := testConfig("AAPL")
	cfg.SentimentThreshold = 0.9
	cfg.CacheDir = t.TempDir()

	strat, err := New("sentiment", cfg, Deps{
		Broker: b,
		Clock:  testClock(),
		News:   &testutils.MockSource{Headlines: []string{"mixed quarter"}},
		Model:  &testutils.StubModel{Row: []float64{0.4, 0.3, 0.3}},
		Log:    testutils.NewMockLogger(),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := strat.OnTradingIteration(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Orders()) != 0 {
		t.Fatalf("expected no order below the confidence threshold, got %d", len(b.Orders()))
	}
}
