package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nmoreau/tradecore/testutils"
)

// countingStrategy counts iterations and can hold each one for a while to
// provoke overlapping ticks.
type countingStrategy struct {
	iterations atomic.Int64
	ended      atomic.Bool
	hold       time.Duration
}

func (s *countingStrategy) Name() string { return "counting" }

func (s *countingStrategy) OnTradingIteration(ctx context.Context) error {
	s.iterations.Add(1)
	if s.hold > 0 {
		time.Sleep(s.hold)
	}
	return nil
}

func (s *countingStrategy) OnEnd() { s.ended.Store(true) }

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	strat := &countingStrategy{}
	s := New(strat, testutils.NewMockLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	if err := s.Start(ctx, 25*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strat.iterations.Load(); got < 2 {
		t.Fatalf("expected the immediate iteration plus at least one tick, got %d", got)
	}
	if !strat.ended.Load() {
		t.Fatalf("expected OnEnd after shutdown")
	}
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	// Each iteration outlasts several ticks; the overlap guard must keep
	// the count well below the tick count.
	strat := &countingStrategy{hold: 60 * time.Millisecond}
	log := testutils.NewMockLogger()
	s := New(strat, log)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := s.Start(ctx, 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strat.iterations.Load(); got > 5 {
		t.Fatalf("expected overlapping ticks to be skipped, got %d iterations", got)
	}
	skipped := false
	for _, msg := range log.Messages() {
		if msg == "iteration_skipped_still_running" {
			skipped = true
		}
	}
	if !skipped {
		t.Fatalf("expected at least one skipped-tick log entry")
	}
}

func TestSchedulerRejectsNonPositiveInterval(t *testing.T) {
	s := New(&countingStrategy{}, testutils.NewMockLogger())
	if err := s.Start(context.Background(), 0); err == nil {
		t.Fatalf("expected an error for a zero interval")
	}
}
