package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Params is the tunable parameter set defining an entry signal.
type Params struct {
	RSIThreshold     float64 `json:"rsi_threshold" yaml:"rsi_threshold"`
	VolumeMultiplier float64 `json:"volume_multiplier" yaml:"volume_multiplier"`
	HourStart        int     `json:"hour_start" yaml:"hour_start"`
	HourEnd          int     `json:"hour_end" yaml:"hour_end"`
}

// DefaultParams is used when no stored strategy config exists.
var DefaultParams = Params{
	RSIThreshold:     29,
	VolumeMultiplier: 1.8,
	HourStart:        3,
	HourEnd:          18,
}

// Trade is a single simulated round trip.
type Trade struct {
	EntryTime time.Time
	ExitTime  time.Time
	BuyPrice  float64
	SellPrice float64
	PnLPct    float64
}

// Win reports whether the trade closed with a positive return.
func (t Trade) Win() bool { return t.PnLPct > 0 }

// Result summarizes the trades produced by one parameter set.
type Result struct {
	Params         Params
	SuccessRatePct float64
	AvgReturnPct   float64
	TradeCount     int
}

// ErrInvalidParams is returned when a parameter set is out of range.
var ErrInvalidParams = errors.New("invalid params")

// Validate checks hour bounds and the volume multiplier.
func (p Params) Validate() error {
	if p.HourStart < 0 || p.HourStart > 23 {
		return fmt.Errorf("%w: hour_start %d outside [0,23]", ErrInvalidParams, p.HourStart)
	}
	if p.HourEnd < 0 || p.HourEnd > 23 {
		return fmt.Errorf("%w: hour_end %d outside [0,23]", ErrInvalidParams, p.HourEnd)
	}
	if math.IsNaN(p.RSIThreshold) || math.IsNaN(p.VolumeMultiplier) {
		return fmt.Errorf("%w: NaN threshold", ErrInvalidParams)
	}
	if p.VolumeMultiplier <= 0 {
		return fmt.Errorf("%w: volume_multiplier must be positive", ErrInvalidParams)
	}
	return nil
}
