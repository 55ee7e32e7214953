package calculator

import (
	"fmt"

	"SignalSentinel/internal/model"
)

// Default indicator settings.
const (
	DefaultRSIPeriod    = 14
	DefaultVolumeWindow = 10
)

// BuildFrame derives the indicator columns for a series. The series is not modified.
func BuildFrame(series *model.Series, rsiPeriod, volumeWindow int) (*model.Frame, error) {
	rsi, err := RSISeries(series.Closes(), rsiPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	avgVolume, err := RollingMean(series.Volumes(), volumeWindow)
	if err != nil {
		return nil, fmt.Errorf("avg volume: %w", err)
	}
	hours := make([]int, series.Len())
	for i := range hours {
		hours[i] = series.At(i).Time.Hour()
	}
	return model.NewFrame(rsi, avgVolume, hours), nil
}
