package strategy

import "SignalSentinel/internal/model"

// GenerateSignals flags every bar where the oscillator is below the threshold,
// volume exceeds the rolling mean times the multiplier, and the hour lies in
// [HourStart, HourEnd]. Undefined indicator values never signal.
func GenerateSignals(series *model.Series, frame *model.Frame, p model.Params) []bool {
	entries := make([]bool, series.Len())
	for i := range entries {
		rsi, ok := frame.RSI(i)
		if !ok || !(rsi < p.RSIThreshold) {
			continue
		}
		avgVol, ok := frame.AvgVolume(i)
		if !ok || !(series.At(i).Volume > avgVol*p.VolumeMultiplier) {
			continue
		}
		h := frame.Hour(i)
		entries[i] = p.HourStart <= h && h <= p.HourEnd
	}
	return entries
}
