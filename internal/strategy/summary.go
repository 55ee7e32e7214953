package strategy

import "SignalSentinel/internal/model"

// Summarize aggregates trades into a Result. ok is false for an empty trade set,
// which callers must not confuse with a 0% success rate.
func Summarize(params model.Params, trades []model.Trade) (res model.Result, ok bool) {
	if len(trades) == 0 {
		return model.Result{}, false
	}
	wins := 0
	sum := 0.0
	for _, t := range trades {
		if t.Win() {
			wins++
		}
		sum += t.PnLPct
	}
	n := float64(len(trades))
	return model.Result{
		Params:         params,
		SuccessRatePct: float64(wins) / n * 100,
		AvgReturnPct:   sum / n,
		TradeCount:     len(trades),
	}, true
}

// Qualifies reports whether a result meets the default candidate rule:
// success rate of at least minSuccess and a positive average return.
func Qualifies(res model.Result, minSuccess float64) bool {
	return res.SuccessRatePct >= minSuccess && res.AvgReturnPct > 0
}
