package strategy

import (
	"fmt"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// DefaultHorizon is the holding period of every simulated trade.
const DefaultHorizon = 24 * time.Hour

// Engine runs the indicator -> signal -> trade -> summary pipeline.
// It holds configuration only and is safe for concurrent use.
type Engine struct {
	RSIPeriod    int
	VolumeWindow int
	Horizon      time.Duration
}

// New creates an Engine with the default indicator settings and a one-day horizon.
func New() *Engine {
	return &Engine{
		RSIPeriod:    calculator.DefaultRSIPeriod,
		VolumeWindow: calculator.DefaultVolumeWindow,
		Horizon:      DefaultHorizon,
	}
}

// Backtest is the full output of one evaluation.
type Backtest struct {
	Entries []bool
	Trades  []model.Trade
	Result  model.Result
	// HasResult is false when no trade was realized.
	HasResult bool
}

// Indicators builds a fresh frame for the series.
func (e *Engine) Indicators(series *model.Series) (*model.Frame, error) {
	return calculator.BuildFrame(series, e.RSIPeriod, e.VolumeWindow)
}

// Run evaluates params over the series and keeps the intermediate trades.
func (e *Engine) Run(series *model.Series, params model.Params) (*Backtest, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	frame, err := e.Indicators(series)
	if err != nil {
		return nil, fmt.Errorf("build indicators: %w", err)
	}
	entries := GenerateSignals(series, frame, params)
	trades := SimulateTrades(series, entries, e.Horizon)
	res, ok := Summarize(params, trades)
	return &Backtest{Entries: entries, Trades: trades, Result: res, HasResult: ok}, nil
}

// Evaluate returns the summary for params. ok is false when no trade was realized.
func (e *Engine) Evaluate(series *model.Series, params model.Params) (res model.Result, ok bool, err error) {
	bt, err := e.Run(series, params)
	if err != nil {
		return model.Result{}, false, err
	}
	return bt.Result, bt.HasResult, nil
}

// EvaluateFrame evaluates params against a prebuilt frame. The frame is only read.
func (e *Engine) EvaluateFrame(series *model.Series, frame *model.Frame, params model.Params) (model.Result, bool) {
	entries := GenerateSignals(series, frame, params)
	return Summarize(params, SimulateTrades(series, entries, e.Horizon))
}
