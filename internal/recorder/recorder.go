package recorder

import (
	"time"

	"SignalSentinel/internal/model"
)

// Evaluation sources.
const (
	SourceAlert    = "ALERT"
	SourceCommand  = "COMMAND"
	SourceBacktest = "BACKTEST"
)

// EvaluationRecord captures one evaluation of a parameter set.
type EvaluationRecord struct {
	Source   string
	Symbol   string
	Bars     int
	Result   model.Result
	HasTrade bool
	Alerted  bool
}

// SearchRun captures one grid search.
type SearchRun struct {
	RunID      string
	Symbol     string
	Total      int
	Evaluated  int
	Qualified  int
	Best       *model.Result
	StartedAt  time.Time
	FinishedAt time.Time
	Err        string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
	RecordSearchRun(run *SearchRun) error
	Close() error
}
