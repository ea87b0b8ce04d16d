package testutils

import (
	"context"
	"time"
)

// MockSource serves scripted headlines and counts fetches, which lets
// tests assert cache idempotence.
type MockSource struct {
	Headlines []string
	Fetches   int
	Err       error
}

func (m *MockSource) GetNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]string, error) {
	m.Fetches++
	if m.Err != nil {
		return nil, m.Err
	}
	headlines := m.Headlines
	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	out := make([]string, len(headlines))
	copy(out, headlines)
	return out, nil
}

// StubModel returns the same raw class scores for every headline,
// ordered [positive, negative, neutral].
type StubModel struct {
	Row []float64
	Err error
}

func (m *StubModel) Scores(ctx context.Context, headlines []string) ([][]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float64, len(headlines))
	for i := range out {
		row := make([]float64, len(m.Row))
		copy(row, m.Row)
		out[i] = row
	}
	return out, nil
}
