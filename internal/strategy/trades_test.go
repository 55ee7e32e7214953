package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
)

func TestSimulateTrades_ExitLookup(t *testing.T) {
	closes := make([]float64, 30)
	volumes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := hourlySeries(t, closes, volumes)
	entries := make([]bool, 30)
	entries[0] = true  // exit at bar 24 exists
	entries[10] = true // exit at bar 34 is past the end

	trades := SimulateTrades(series, entries, 24*time.Hour)
	require.Len(t, trades, 1)
	assert.Equal(t, t0, trades[0].EntryTime)
	assert.Equal(t, t0.Add(24*time.Hour), trades[0].ExitTime)
	assert.Equal(t, 100.0, trades[0].BuyPrice)
	assert.Equal(t, 124.0, trades[0].SellPrice)
	assert.InDelta(t, 24.0, trades[0].PnLPct, 1e-12)
}

func TestSimulateTrades_GapSkipsEntry(t *testing.T) {
	bars := []model.Bar{
		{Time: t0, Close: 10},
		{Time: t0.Add(time.Hour), Close: 11},
		{Time: t0.Add(24 * time.Hour), Close: 12},
		// no bar at t0+25h
		{Time: t0.Add(26 * time.Hour), Close: 13},
	}
	series, err := model.NewSeries("GAP", bars)
	require.NoError(t, err)

	trades := SimulateTrades(series, []bool{true, true, false, false}, 24*time.Hour)
	require.Len(t, trades, 1)
	assert.Equal(t, t0, trades[0].EntryTime)
}

func TestSimulateTrades_MatchesInstantAcrossZones(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	bars := []model.Bar{
		{Time: t0, Close: 10},
		{Time: t0.Add(24 * time.Hour).In(kst), Close: 20},
	}
	series, err := model.NewSeries("TZ", bars)
	require.NoError(t, err)

	trades := SimulateTrades(series, []bool{true, false}, 24*time.Hour)
	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].PnLPct)
}

func TestSimulateTrades_PreservesEntryOrder(t *testing.T) {
	closes := make([]float64, 50)
	volumes := make([]float64, 50)
	for i := range closes {
		closes[i] = 50
	}
	series := hourlySeries(t, closes, volumes)
	entries := make([]bool, 50)
	entries[3], entries[1], entries[20] = true, true, true

	trades := SimulateTrades(series, entries, 24*time.Hour)
	require.Len(t, trades, 3)
	assert.True(t, trades[0].EntryTime.Before(trades[1].EntryTime))
	assert.True(t, trades[1].EntryTime.Before(trades[2].EntryTime))
}
