// Package backtest replays historical bars through the same trading
// iteration callback the live scheduler drives.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/logger"
	"github.com/nmoreau/tradecore/recorder"
	"github.com/nmoreau/tradecore/strategy"
	"github.com/nmoreau/tradecore/types"
)

// Result summarizes one backtest run.
type Result struct {
	StartCash   float64
	FinalCash   float64
	FinalEquity float64
	Return      float64 // final equity over starting cash, minus one
	Trades      int
	FeesPaid    float64
}

// Engine owns the replay loop: the paper broker is both the market-data
// source and the execution venue, advanced one bar at a time.
type Engine struct {
	symbol string
	paper  *broker.Paper
	strat  strategy.Strategy
	rec    recorder.Recorder
	log    logger.Logger
}

func NewEngine(symbol string, paper *broker.Paper, strat strategy.Strategy,
	rec recorder.Recorder, log logger.Logger) *Engine {
	return &Engine{symbol: symbol, paper: paper, strat: strat, rec: rec, log: log}
}

// Run replays the bars in order. Bars earlier than tradeFrom only seed the
// history window; trading iterations begin at tradeFrom (pass the zero time
// to trade from the first bar). An iteration error aborts only that
// iteration: the engine plays the scheduler's role, logs the failure and
// moves to the next bar. Context cancellation stops the replay.
func (e *Engine) Run(ctx context.Context, bars []types.Bar, tradeFrom time.Time) (Result, error) {
	if len(bars) == 0 {
		return Result{}, fmt.Errorf("backtest: no bars for %s", e.symbol)
	}
	startCash, err := e.paper.Cash()
	if err != nil {
		return Result{}, err
	}
	runID, err := e.rec.RecordRun(recorder.RunInfo{
		Strategy:  e.strat.Name(),
		Symbol:    e.symbol,
		Start:     bars[0].Time,
		End:       bars[len(bars)-1].Time,
		StartCash: startCash,
	})
	if err != nil {
		return Result{}, err
	}

	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		e.paper.Advance(e.symbol, bar)
		if bar.Time.Before(tradeFrom) {
			continue
		}
		if err := e.strat.OnTradingIteration(ctx); err != nil {
			e.log.Warn("iteration_error",
				logger.String("strategy", e.strat.Name()),
				logger.String("bar", bar.Time.Format("2006-01-02")),
				logger.Err(err),
			)
		}
	}
	e.strat.OnEnd()

	fills := e.paper.Fills()
	var feesPaid float64
	for _, f := range fills {
		feesPaid += f.Fee
		if err := e.rec.RecordFill(runID, f); err != nil {
			return Result{}, err
		}
	}

	finalCash, _ := e.paper.Cash()
	res := Result{
		StartCash:   startCash,
		FinalCash:   finalCash,
		FinalEquity: e.paper.Equity(),
		Trades:      len(fills),
		FeesPaid:    feesPaid,
	}
	if startCash > 0 {
		res.Return = res.FinalEquity/startCash - 1
	}
	if err := e.rec.FinishRun(runID, recorder.RunInfo{
		FinalCash:  res.FinalCash,
		FinalValue: res.FinalEquity,
	}); err != nil {
		return Result{}, err
	}
	return res, nil
}
