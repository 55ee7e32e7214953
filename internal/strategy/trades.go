package strategy

import (
	"time"

	"SignalSentinel/internal/model"
)

// SimulateTrades opens a position at every flagged bar and closes it at the
// bar stamped exactly `horizon` later. Entries without such a bar are skipped.
func SimulateTrades(series *model.Series, entries []bool, horizon time.Duration) []model.Trade {
	var trades []model.Trade
	for i, entry := range entries {
		if !entry {
			continue
		}
		in := series.At(i)
		exitTime := in.Time.Add(horizon)
		j, ok := series.IndexOf(exitTime)
		if !ok {
			continue
		}
		out := series.At(j)
		trades = append(trades, model.Trade{
			EntryTime: in.Time,
			ExitTime:  out.Time,
			BuyPrice:  in.Close,
			SellPrice: out.Close,
			PnLPct:    (out.Close - in.Close) / in.Close * 100,
		})
	}
	return trades
}
