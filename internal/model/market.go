package model

import (
	"fmt"
	"sort"
	"time"
)

// Bar represents a single candlestick bar. Open, High and Low are optional
// and ignored by the evaluation engine.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered, read-only sequence of bars with exact-timestamp lookup.
type Series struct {
	Symbol string
	bars   []Bar
	index  map[int64]int
}

// NewSeries sorts the bars chronologically and indexes them by timestamp.
// Duplicate timestamps are rejected.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	index := make(map[int64]int, len(sorted))
	for i, b := range sorted {
		key := b.Time.UnixNano()
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("duplicate timestamp %s", b.Time.Format(time.RFC3339))
		}
		index[key] = i
	}
	return &Series{Symbol: symbol, bars: sorted, index: index}, nil
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.bars) }

// At returns the i-th bar.
func (s *Series) At(i int) Bar { return s.bars[i] }

// IndexOf returns the position of the bar stamped exactly at t.
// Timestamps are compared as instants, so zones do not matter.
func (s *Series) IndexOf(t time.Time) (int, bool) {
	i, ok := s.index[t.UnixNano()]
	return i, ok
}

// Bars returns a copy of the underlying bars.
func (s *Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Closes extracts close prices in series order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts volumes in series order.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Volume
	}
	return out
}
