package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
)

func TestEngine_SpikeProducesOneTrade(t *testing.T) {
	series := spikeSeries(t, 48)
	bt, err := New().Run(series, model.DefaultParams)
	require.NoError(t, err)

	require.True(t, bt.HasResult)
	require.Len(t, bt.Trades, 1)
	tr := bt.Trades[0]
	assert.Equal(t, series.At(15).Time, tr.EntryTime)
	assert.Equal(t, series.At(39).Time, tr.ExitTime)
	assert.Equal(t, series.At(15).Close, tr.BuyPrice)
	assert.Equal(t, 200.0, tr.SellPrice)
	assert.Equal(t, 1, bt.Result.TradeCount)
	assert.Equal(t, 100.0, bt.Result.SuccessRatePct)
	assert.InDelta(t, (200-92.5)/92.5*100, bt.Result.AvgReturnPct, 1e-9)
}

func TestEngine_SpikeWithoutExitBarHasNoResult(t *testing.T) {
	series := spikeSeries(t, 20)
	bt, err := New().Run(series, model.DefaultParams)
	require.NoError(t, err)

	assert.True(t, bt.Entries[15], "bar 15 should signal")
	assert.Empty(t, bt.Trades)
	assert.False(t, bt.HasResult)
}

func TestEngine_EvaluateIsIdempotent(t *testing.T) {
	series := spikeSeries(t, 48)
	e := New()
	r1, ok1, err := e.Evaluate(series, model.DefaultParams)
	require.NoError(t, err)
	r2, ok2, err := e.Evaluate(series, model.DefaultParams)
	require.NoError(t, err)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, math.Float64bits(r1.SuccessRatePct), math.Float64bits(r2.SuccessRatePct))
	assert.Equal(t, math.Float64bits(r1.AvgReturnPct), math.Float64bits(r2.AvgReturnPct))
	assert.Equal(t, r1, r2)
}

func TestEngine_EvaluateFrameMatchesEvaluate(t *testing.T) {
	series := spikeSeries(t, 48)
	e := New()
	frame, err := e.Indicators(series)
	require.NoError(t, err)

	want, wantOK, err := e.Evaluate(series, model.DefaultParams)
	require.NoError(t, err)
	got, gotOK := e.EvaluateFrame(series, frame, model.DefaultParams)
	assert.Equal(t, wantOK, gotOK)
	assert.Equal(t, want, got)
}

func TestEngine_RejectsInvalidParams(t *testing.T) {
	series := spikeSeries(t, 20)
	p := model.DefaultParams
	p.HourEnd = 24
	_, _, err := New().Evaluate(series, p)
	require.ErrorIs(t, err, model.ErrInvalidParams)
}

func TestEngine_HourOutsideWindowBlocksEntry(t *testing.T) {
	series := spikeSeries(t, 48)
	p := model.DefaultParams
	p.HourStart, p.HourEnd = 16, 18
	bt, err := New().Run(series, p)
	require.NoError(t, err)
	assert.False(t, bt.HasResult)
}

func TestEngine_CustomHorizon(t *testing.T) {
	series := spikeSeries(t, 48)
	e := New()
	e.Horizon = 2 * time.Hour
	bt, err := e.Run(series, model.DefaultParams)
	require.NoError(t, err)
	require.Len(t, bt.Trades, 1)
	assert.Equal(t, series.At(17).Time, bt.Trades[0].ExitTime)
	assert.Equal(t, 0.0, bt.Result.SuccessRatePct)
}
