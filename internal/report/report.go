// Package report renders backtest output for terminals and files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

// Defaults for the text report.
const (
	DefaultTail      = 5
	DefaultBins      = 20
	DefaultSMAPeriod = 24
	barWidth         = 40
)

// Bin is one histogram bucket covering [Lo, Hi); the last bin also includes Hi.
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Label returns SUCCESS for winning trades and FAILURE otherwise.
func Label(t model.Trade) string {
	if t.Win() {
		return "SUCCESS"
	}
	return "FAILURE"
}

// Tail returns the last n trades.
func Tail(trades []model.Trade, n int) []model.Trade {
	if n <= 0 || len(trades) == 0 {
		return nil
	}
	if n > len(trades) {
		n = len(trades)
	}
	return trades[len(trades)-n:]
}

// Histogram splits the finite values into equal-width bins over [min, max].
// A single distinct value is centred in a unit-wide range.
func Histogram(values []float64, bins int) []Bin {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	values = finite
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// Write prints the trade tail, the summary and the return histogram.
func Write(w io.Writer, series *model.Series, bt *strategy.Backtest) error {
	var b strings.Builder
	p := bt.Result.Params
	fmt.Fprintf(&b, "Symbol: %s (%d bars)\n", series.Symbol, series.Len())
	fmt.Fprintf(&b, "Params: RSI < %g, volume > %gx avg, hours %02d-%02d\n",
		p.RSIThreshold, p.VolumeMultiplier, p.HourStart, p.HourEnd)
	if closes := series.Closes(); len(closes) >= DefaultSMAPeriod {
		if sma, err := calculator.CalculateSMA(closes, DefaultSMAPeriod); err == nil {
			fmt.Fprintf(&b, "Last close: %.4f (SMA%d %.4f)\n", closes[len(closes)-1], DefaultSMAPeriod, sma)
		}
	}

	if !bt.HasResult {
		b.WriteString("\nNo trade realized.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\nLast trades:\n")
	fmt.Fprintf(&b, "%-20s %-20s %12s %12s %9s  %s\n", "entry", "exit", "buy", "sell", "pnl%", "result")
	for _, t := range Tail(bt.Trades, DefaultTail) {
		fmt.Fprintf(&b, "%-20s %-20s %12.4f %12.4f %9.2f  %s\n",
			t.EntryTime.Format("2006-01-02 15:04"), t.ExitTime.Format("2006-01-02 15:04"),
			t.BuyPrice, t.SellPrice, t.PnLPct, Label(t))
	}

	fmt.Fprintf(&b, "\nTrades: %d\n", bt.Result.TradeCount)
	fmt.Fprintf(&b, "Success rate: %.2f%%\n", bt.Result.SuccessRatePct)
	fmt.Fprintf(&b, "Avg return: %.2f%%\n", bt.Result.AvgReturnPct)

	pnls := make([]float64, len(bt.Trades))
	for i, t := range bt.Trades {
		pnls[i] = t.PnLPct
	}
	bins := Histogram(pnls, DefaultBins)
	peak := 0
	for _, bin := range bins {
		peak = max(peak, bin.Count)
	}
	b.WriteString("\nReturn distribution (%):\n")
	for _, bin := range bins {
		n := 0
		if peak > 0 {
			n = bin.Count * barWidth / peak
		}
		fmt.Fprintf(&b, "%8.2f .. %8.2f | %-*s %d\n", bin.Lo, bin.Hi, barWidth, strings.Repeat("#", n), bin.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteLedgerCSV writes every trade with its SUCCESS/FAILURE label.
func WriteLedgerCSV(path string, trades []model.Trade) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close ledger: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"entry", "exit", "buy_price", "sell_price", "pnl", "result"}); err != nil {
		return err
	}
	for _, t := range trades {
		rec := []string{
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			fmt.Sprintf("%g", t.BuyPrice),
			fmt.Sprintf("%g", t.SellPrice),
			fmt.Sprintf("%g", t.PnLPct),
			Label(t),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
