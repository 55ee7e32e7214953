package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func trades(pnls ...float64) []model.Trade {
	out := make([]model.Trade, len(pnls))
	for i, p := range pnls {
		entry := t0.Add(time.Duration(i) * time.Hour)
		out[i] = model.Trade{
			EntryTime: entry,
			ExitTime:  entry.Add(24 * time.Hour),
			BuyPrice:  100,
			SellPrice: 100 + p,
			PnLPct:    p,
		}
	}
	return out
}

func TestTail(t *testing.T) {
	all := trades(1, 2, 3, 4, 5, 6, 7)
	tail := Tail(all, 5)
	require.Len(t, tail, 5)
	assert.Equal(t, 3.0, tail[0].PnLPct)
	assert.Len(t, Tail(all[:2], 5), 2)
	assert.Nil(t, Tail(nil, 5))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "SUCCESS", Label(model.Trade{PnLPct: 0.1}))
	assert.Equal(t, "FAILURE", Label(model.Trade{PnLPct: 0}))
	assert.Equal(t, "FAILURE", Label(model.Trade{PnLPct: -2}))
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4, 10}, 5)
	require.Len(t, bins, 5)
	assert.Equal(t, 0.0, bins[0].Lo)
	assert.Equal(t, 10.0, bins[4].Hi)
	counts := []int{bins[0].Count, bins[1].Count, bins[2].Count, bins[3].Count, bins[4].Count}
	assert.Equal(t, []int{2, 2, 1, 0, 1}, counts)

	single := Histogram([]float64{2, 2}, 4)
	require.Len(t, single, 4)
	assert.Equal(t, 1.5, single[0].Lo)
	assert.Equal(t, 2.5, single[3].Hi)
	total := 0
	for _, b := range single {
		total += b.Count
	}
	assert.Equal(t, 2, total)

	assert.Nil(t, Histogram(nil, 20))
}

func TestWrite(t *testing.T) {
	bars := make([]model.Bar, 30)
	for i := range bars {
		bars[i] = model.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Close: 10, Volume: 1}
	}
	series, err := model.NewSeries("KRW-SOL", bars)
	require.NoError(t, err)

	ts := trades(-1, 2, 3, 4, 5, 6)
	res, ok := strategy.Summarize(model.DefaultParams, ts)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, series, &strategy.Backtest{Trades: ts, Result: res, HasResult: true}))
	out := buf.String()
	assert.Contains(t, out, "Symbol: KRW-SOL (30 bars)")
	assert.Contains(t, out, "SMA24 10.0000")
	assert.Contains(t, out, "Success rate: 83.33%")
	assert.Contains(t, out, "SUCCESS")
	assert.NotContains(t, out, "FAILURE", "losing trade is outside the tail")
	assert.Contains(t, out, "Return distribution")

	buf.Reset()
	empty := &strategy.Backtest{Result: model.Result{Params: model.DefaultParams}}
	require.NoError(t, Write(&buf, series, empty))
	assert.Contains(t, buf.String(), "No trade realized")
}

func TestWriteLedgerCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteLedgerCSV(path, trades(-1.5, 2)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"entry", "exit", "buy_price", "sell_price", "pnl", "result"}, rows[0])
	assert.Equal(t, "2024-01-01T00:00:00Z", rows[1][0])
	assert.Equal(t, "-1.5", rows[1][4])
	assert.Equal(t, "FAILURE", rows[1][5])
	assert.Equal(t, "SUCCESS", rows[2][5])
}

func TestHistogram_SkipsNonFinite(t *testing.T) {
	bins := Histogram([]float64{1, math.Inf(1), 3, math.NaN(), math.Inf(-1)}, 20)
	require.Len(t, bins, 20)
	assert.Equal(t, 1.0, bins[0].Lo)
	assert.Equal(t, 3.0, bins[19].Hi)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 2, total)

	assert.Nil(t, Histogram([]float64{math.Inf(1), math.NaN()}, 20))
}

func TestWriteLedgerCSV_CreateError(t *testing.T) {
	err := WriteLedgerCSV(filepath.Join(t.TempDir(), "missing", "ledger.csv"), trades(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create ledger")
}
