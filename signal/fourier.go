package signal

import (
	"context"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/types"
)

// FourierProvider low-pass filters a window of closes: the series is
// demeaned, transformed, truncated to its first `components` frequency
// coefficients and transformed back. The sign of the filtered series' last
// value decides the direction; a positive trend residual is bullish.
type FourierProvider struct {
	broker     broker.Broker
	window     int
	components int
}

func NewFourierProvider(b broker.Broker, window, components int) *FourierProvider {
	return &FourierProvider{broker: b, window: window, components: components}
}

func (p *FourierProvider) Name() string { return "fourier" }

func (p *FourierProvider) Evaluate(ctx context.Context, snap Snapshot) (Signal, error) {
	bars, err := p.broker.HistoricalPrices(snap.Symbol, p.window, "day")
	if err != nil {
		return None, err
	}
	closes := types.Closes(bars)
	if len(closes) < p.window {
		// Still warming up; not an error.
		return None, nil
	}
	filtered := lowPass(closes, p.components)
	last := filtered[len(filtered)-1]
	switch {
	case last > 0:
		return Bullish, nil
	case last < 0:
		return Bearish, nil
	}
	return None, nil
}

// lowPass keeps the first k frequency components of the demeaned series.
func lowPass(series []float64, k int) []float64 {
	n := len(series)
	mean := stat.Mean(series, nil)
	demeaned := make([]float64, n)
	for i, v := range series {
		demeaned[i] = v - mean
	}
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, demeaned)
	for i := k; i < len(coeffs); i++ {
		coeffs[i] = 0
	}
	out := fft.Sequence(nil, coeffs)
	// Sequence(Coefficients(x)) scales by n.
	for i := range out {
		out[i] /= float64(n)
	}
	return out
}
