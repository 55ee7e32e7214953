package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordEvaluation(t *testing.T) {
	r := openTestRecorder(t)
	res := model.Result{Params: model.DefaultParams, SuccessRatePct: 91, AvgReturnPct: 1.5, TradeCount: 11}

	require.NoError(t, r.RecordEvaluation(&EvaluationRecord{
		Source: SourceAlert, Symbol: "KRW-SOL", Bars: 500, Result: res, HasTrade: true, Alerted: true,
	}))

	var (
		source  string
		rsi     float64
		hourEnd int
		alerted int
		count   int
	)
	row := r.db.QueryRow(`SELECT source, rsi_threshold, hour_end, alerted, trade_count FROM evaluations`)
	require.NoError(t, row.Scan(&source, &rsi, &hourEnd, &alerted, &count))
	assert.Equal(t, SourceAlert, source)
	assert.Equal(t, 29.0, rsi)
	assert.Equal(t, 18, hourEnd)
	assert.Equal(t, 1, alerted)
	assert.Equal(t, 11, count)
}

func TestRecordSearchRun(t *testing.T) {
	r := openTestRecorder(t)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	best := model.Result{Params: model.DefaultParams, SuccessRatePct: 95, AvgReturnPct: 2, TradeCount: 20}

	require.NoError(t, r.RecordSearchRun(&SearchRun{
		RunID: "found", Symbol: "KRW-SOL", Total: 10, Evaluated: 10, Qualified: 2, Best: &best,
		StartedAt: start, FinishedAt: start.Add(time.Second),
	}))
	require.NoError(t, r.RecordSearchRun(&SearchRun{
		RunID: "empty", Symbol: "KRW-SOL", Total: 10, Evaluated: 4,
		StartedAt: start, FinishedAt: start, Err: "context canceled",
	}))

	var found int
	var rate float64
	require.NoError(t, r.db.QueryRow(`SELECT found, success_rate FROM search_runs WHERE run_id = 'found'`).Scan(&found, &rate))
	assert.Equal(t, 1, found)
	assert.Equal(t, 95.0, rate)

	var nullRate *float64
	var errText string
	require.NoError(t, r.db.QueryRow(`SELECT success_rate, error FROM search_runs WHERE run_id = 'empty'`).Scan(&nullRate, &errText))
	assert.Nil(t, nullRate)
	assert.Equal(t, "context canceled", errText)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordEvaluation(&EvaluationRecord{Source: SourceCommand, Result: model.Result{Params: model.DefaultParams}}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM evaluations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordEvaluation(&EvaluationRecord{}))
	assert.NoError(t, rec.RecordSearchRun(&SearchRun{}))
	assert.NoError(t, rec.Close())
}
