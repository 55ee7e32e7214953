package search

import (
	"fmt"
	"math"

	"SignalSentinel/internal/model"
)

// Ranges are the candidate values for each parameter.
type Ranges struct {
	RSIThresholds     []float64 `yaml:"rsi_thresholds"`
	VolumeMultipliers []float64 `yaml:"volume_multipliers"`
	HourStarts        []int     `yaml:"hour_starts"`
	HourEnds          []int     `yaml:"hour_ends"`
}

// DefaultRanges is the stock evolution grid (5400 tuples).
func DefaultRanges() Ranges {
	r := Ranges{
		VolumeMultipliers: []float64{1.2, 1.4, 1.6, 1.8, 2.0, 2.2},
	}
	for v := 15; v < 40; v++ {
		r.RSIThresholds = append(r.RSIThresholds, float64(v))
	}
	for h := 0; h < 12; h += 2 {
		r.HourStarts = append(r.HourStarts, h)
	}
	for h := 12; h < 24; h += 2 {
		r.HourEnds = append(r.HourEnds, h)
	}
	return r
}

// Size returns the number of tuples in the Cartesian product.
func (r Ranges) Size() int {
	return len(r.RSIThresholds) * len(r.VolumeMultipliers) * len(r.HourStarts) * len(r.HourEnds)
}

// At returns the i-th tuple. The RSI threshold varies slowest and the hour
// end fastest.
func (r Ranges) At(i int) model.Params {
	nHE := len(r.HourEnds)
	nHS := len(r.HourStarts)
	nVol := len(r.VolumeMultipliers)

	he := i % nHE
	i /= nHE
	hs := i % nHS
	i /= nHS
	vol := i % nVol
	i /= nVol

	return model.Params{
		RSIThreshold:     r.RSIThresholds[i],
		VolumeMultiplier: r.VolumeMultipliers[vol],
		HourStart:        r.HourStarts[hs],
		HourEnd:          r.HourEnds[he],
	}
}

// Validate rejects empty ranges, repeated values and out-of-range values.
// Repeats would enumerate the same tuple twice.
func (r Ranges) Validate() error {
	if r.Size() == 0 {
		return fmt.Errorf("%w: every range needs at least one value", model.ErrInvalidParams)
	}
	for _, v := range r.RSIThresholds {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN rsi threshold", model.ErrInvalidParams)
		}
	}
	for _, v := range r.VolumeMultipliers {
		if math.IsNaN(v) || v <= 0 {
			return fmt.Errorf("%w: volume multiplier %v must be positive", model.ErrInvalidParams, v)
		}
	}
	for _, hours := range [][]int{r.HourStarts, r.HourEnds} {
		for _, h := range hours {
			if h < 0 || h > 23 {
				return fmt.Errorf("%w: hour %d outside [0,23]", model.ErrInvalidParams, h)
			}
		}
	}
	if err := unique("rsi_thresholds", r.RSIThresholds); err != nil {
		return err
	}
	if err := unique("volume_multipliers", r.VolumeMultipliers); err != nil {
		return err
	}
	if err := unique("hour_starts", r.HourStarts); err != nil {
		return err
	}
	return unique("hour_ends", r.HourEnds)
}

func unique[T comparable](name string, values []T) error {
	seen := make(map[T]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return fmt.Errorf("%w: %s repeats %v", model.ErrInvalidParams, name, v)
		}
		seen[v] = true
	}
	return nil
}
