package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nmoreau/tradecore/sentiment"
	"github.com/nmoreau/tradecore/testutils"
)

func snapshot(price float64) Snapshot {
	return Snapshot{
		Symbol:    "AAPL",
		Time:      time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
		LastPrice: price,
		Cash:      10_000,
	}
}

func TestMomentumAboveAverageIsBullish(t *testing.T) {
	b := testutils.NewMockBroker(0, 0, testutils.ConstantBars(20, 100))
	p := NewMomentumProvider(b, 20)

	sig, err := p.Evaluate(context.Background(), snapshot(105))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bullish {
		t.Fatalf("expected bullish above the average, got %s", sig)
	}

	sig, err = p.Evaluate(context.Background(), snapshot(95))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bearish {
		t.Fatalf("expected bearish below the average, got %s", sig)
	}

	sig, err = p.Evaluate(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != None {
		t.Fatalf("expected no signal at the average, got %s", sig)
	}
}

func TestMomentumNoBarsIsAnError(t *testing.T) {
	b := testutils.NewMockBroker(0, 0, nil)
	p := NewMomentumProvider(b, 20)
	if _, err := p.Evaluate(context.Background(), snapshot(100)); err == nil {
		t.Fatalf("expected an error with no history")
	}
}

func TestMomentumPropagatesBrokerError(t *testing.T) {
	wantErr := errors.New("api down")
	b := testutils.NewMockBroker(0, 0, nil)
	b.BarsErr = wantErr
	p := NewMomentumProvider(b, 20)
	if _, err := p.Evaluate(context.Background(), snapshot(100)); !errors.Is(err, wantErr) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

func TestPriceActionCrossover(t *testing.T) {
	// A rising ramp puts the short average of the most recent closes
	// above the average of the whole window.
	b := testutils.NewMockBroker(0, 0, testutils.RampBars(50, 100, 1))
	p := NewPriceActionProvider(b, 20, 50)

	sig, err := p.Evaluate(context.Background(), snapshot(150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bullish {
		t.Fatalf("expected bullish on a rising ramp, got %s", sig)
	}

	b = testutils.NewMockBroker(0, 0, testutils.RampBars(50, 150, -1))
	p = NewPriceActionProvider(b, 20, 50)
	sig, err = p.Evaluate(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bearish {
		t.Fatalf("expected bearish on a falling ramp, got %s", sig)
	}
}

func TestPriceActionFlatSeriesIsNoSignal(t *testing.T) {
	b := testutils.NewMockBroker(0, 0, testutils.ConstantBars(50, 100))
	p := NewPriceActionProvider(b, 20, 50)
	sig, err := p.Evaluate(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != None {
		t.Fatalf("expected no signal on a flat series, got %s", sig)
	}
}

func TestPriceActionTooFewCloses(t *testing.T) {
	b := testutils.NewMockBroker(0, 0, testutils.ConstantBars(10, 100))
	p := NewPriceActionProvider(b, 20, 50)
	if _, err := p.Evaluate(context.Background(), snapshot(100)); err == nil {
		t.Fatalf("expected an error below the short period")
	}
}

func TestFourierWarmupIsSilent(t *testing.T) {
	b := testutils.NewMockBroker(0, 0, testutils.ConstantBars(10, 100))
	p := NewFourierProvider(b, 64, 5)
	sig, err := p.Evaluate(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("warm-up must not error: %v", err)
	}
	if sig != None {
		t.Fatalf("expected no signal during warm-up, got %s", sig)
	}
}

func TestFourierTrendDirection(t *testing.T) {
	// A monotone ramp's low-frequency residual ends with the sign of the
	// trend: positive when rising, negative when falling.
	b := testutils.NewMockBroker(0, 0, testutils.RampBars(64, 100, 1))
	p := NewFourierProvider(b, 64, 3)
	sig, err := p.Evaluate(context.Background(), snapshot(160))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bullish {
		t.Fatalf("expected bullish on a rising ramp, got %s", sig)
	}

	b = testutils.NewMockBroker(0, 0, testutils.RampBars(64, 160, -1))
	p = NewFourierProvider(b, 64, 3)
	sig, err = p.Evaluate(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bearish {
		t.Fatalf("expected bearish on a falling ramp, got %s", sig)
	}
}

func TestLowPassPreservesConstantZero(t *testing.T) {
	series := make([]float64, 32)
	for i := range series {
		series[i] = 42
	}
	out := lowPass(series, 4)
	for i, v := range out {
		if v > 1e-9 || v < -1e-9 {
			t.Fatalf("expected zero residual for a constant series, got %v at %d", v, i)
		}
	}
}

func TestSentimentProviderThreshold(t *testing.T) {
	src := &testutils.MockSource{Headlines: []string{"record results"}}
	cache := sentiment.NewCache(t.TempDir(), "AAPL", 10, src,
		sentiment.NewClassifier(&testutils.StubModel{Row: []float64{20, 0, 0}}))
	p := NewSentimentProvider(cache, 0.999, 3)

	sig, err := p.Evaluate(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bullish {
		t.Fatalf("expected bullish on confident positive news, got %s", sig)
	}

	avg, ok := p.AverageHeadlines()
	if !ok || avg != 1 {
		t.Fatalf("expected average of 1 headline per call, got %v (%v)", avg, ok)
	}
}

func TestSentimentProviderNegativeNews(t *testing.T) {
	src := &testutils.MockSource{Headlines: []string{"probe launched", "guidance cut"}}
	cache := sentiment.NewCache(t.TempDir(), "AAPL", 10, src,
		sentiment.NewClassifier(&testutils.StubModel{Row: []float64{0, 20, 0}}))
	p := NewSentimentProvider(cache, 0.9, 3)

	sig, err := p.Evaluate(context.Background(), snapshot(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != Bearish {
		t.Fatalf("expected bearish on confident negative news, got %s", sig)
	}
}

func TestSentimentProviderNoAverageBeforeFirstCall(t *testing.T) {
	p := NewSentimentProvider(nil, 0.9, 3)
	if _, ok := p.AverageHeadlines(); ok {
		t.Fatalf("expected no average before the first lookup")
	}
}
