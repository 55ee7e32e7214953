package calculator

import (
	"errors"
	"math"
)

// RSISeries computes the oscillator at every position using simple trailing
// means of gains and losses over `period` price changes.
//
// The first `period` positions are NaN. A window without losses saturates at
// 100; a window without any movement is NaN.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		// gains[0] has no predecessor; windows start at index 1 at the earliest.
		avgGain, _ := CalculateSMA(gains[i-period+1:i+1], period)
		avgLoss, _ := CalculateSMA(losses[i-period+1:i+1], period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return math.NaN()
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
