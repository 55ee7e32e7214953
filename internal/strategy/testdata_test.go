package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func hourlySeries(t *testing.T, closes, volumes []float64) *model.Series {
	t.Helper()
	bars := make([]model.Bar, len(closes))
	for i := range closes {
		bars[i] = model.Bar{
			Time:   t0.Add(time.Duration(i) * time.Hour),
			Close:  closes[i],
			Volume: volumes[i],
		}
	}
	s, err := model.NewSeries("TEST", bars)
	require.NoError(t, err)
	return s
}

// spikeSeries declines steadily with a volume spike at bar 15.
func spikeSeries(t *testing.T, n int) *model.Series {
	t.Helper()
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100 - 0.5*float64(i)
		volumes[i] = 100
	}
	volumes[15] = 1000
	if n > 39 {
		closes[39] = 200
	}
	return hourlySeries(t, closes, volumes)
}
