package model

import "math"

// Frame holds the indicator columns derived from a Series. It is aligned 1:1
// with the series and never mutated after construction, so a single frame can
// be shared by concurrent evaluations.
type Frame struct {
	rsi       []float64
	avgVolume []float64
	hour      []int
}

// NewFrame builds a frame from precomputed columns. All slices must have the
// same length; NaN marks an undefined value.
func NewFrame(rsi, avgVolume []float64, hour []int) *Frame {
	return &Frame{rsi: rsi, avgVolume: avgVolume, hour: hour}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.hour) }

// RSI returns the oscillator value at i and whether it is defined.
func (f *Frame) RSI(i int) (float64, bool) {
	v := f.rsi[i]
	return v, !math.IsNaN(v)
}

// AvgVolume returns the rolling volume mean at i and whether it is defined.
func (f *Frame) AvgVolume(i int) (float64, bool) {
	v := f.avgVolume[i]
	return v, !math.IsNaN(v)
}

// Hour returns the hour-of-day (0-23) of row i.
func (f *Frame) Hour(i int) int { return f.hour[i] }
