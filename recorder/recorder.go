// Package recorder persists backtest fills for later analysis.
package recorder

import (
	"time"

	"github.com/nmoreau/tradecore/broker"
)

// RunInfo describes one backtest run.
type RunInfo struct {
	Strategy   string
	Symbol     string
	Start      time.Time
	End        time.Time
	StartCash  float64
	FinalCash  float64
	FinalValue float64
}

// Recorder stores fills and the run summary.
type Recorder interface {
	RecordFill(runID int64, f broker.Fill) error
	RecordRun(info RunInfo) (int64, error)
	FinishRun(runID int64, info RunInfo) error
	Close() error
}

// Noop discards everything; used when no database path is configured.
type Noop struct{}

func (Noop) RecordFill(int64, broker.Fill) error { return nil }
func (Noop) RecordRun(RunInfo) (int64, error)    { return 0, nil }
func (Noop) FinishRun(int64, RunInfo) error      { return nil }
func (Noop) Close() error                        { return nil }
