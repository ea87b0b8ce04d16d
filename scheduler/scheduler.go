// Package scheduler drives live trading iterations on a fixed cadence.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nmoreau/tradecore/logger"
	"github.com/nmoreau/tradecore/strategy"
)

// Scheduler invokes one strategy's trading iteration on a fixed interval.
// Iterations never overlap: a tick that lands while the previous iteration
// is still running is skipped. The core never retries; an iteration error
// is logged here and the next tick proceeds.
type Scheduler struct {
	cron    *cron.Cron
	strat   strategy.Strategy
	log     logger.Logger
	running atomic.Bool
}

func New(strat strategy.Strategy, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		strat: strat,
		log:   log,
	}
}

// Start registers the iteration at the given interval, runs one iteration
// immediately, then blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", interval)
	}
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, func() { s.iterate(ctx) }); err != nil {
		return fmt.Errorf("scheduler: register iteration: %w", err)
	}

	s.log.Info("scheduler_started",
		logger.String("strategy", s.strat.Name()),
		logger.String("interval", interval.String()),
	)
	s.iterate(ctx)
	s.cron.Start()

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.strat.OnEnd()
	s.log.Info("scheduler_stopped", logger.String("strategy", s.strat.Name()))
	return nil
}

func (s *Scheduler) iterate(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("iteration_skipped_still_running", logger.String("strategy", s.strat.Name()))
		return
	}
	defer s.running.Store(false)

	if err := s.strat.OnTradingIteration(ctx); err != nil {
		s.log.Error("iteration_error",
			logger.String("strategy", s.strat.Name()),
			logger.Err(err),
		)
	}
}
