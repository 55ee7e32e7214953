package notifier

import (
	"fmt"
	"strings"
	"time"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/search"
)

// FormatSignalAlert formats the alert sent when a parameter set clears the alert threshold.
func FormatSignalAlert(symbol string, res model.Result) string {
	var b strings.Builder
	b.WriteString("📡 <b>Signal Alert</b>")
	if symbol != "" {
		b.WriteString(fmt.Sprintf(" | %s", symbol))
	}
	b.WriteString("\n✅ Conditions met, entry window reached\n")
	b.WriteString(fmt.Sprintf("RSI < %g, volume > %gx avg\n", res.Params.RSIThreshold, res.Params.VolumeMultiplier))
	b.WriteString(fmt.Sprintf("Hours %02d-%02d\n", res.Params.HourStart, res.Params.HourEnd))
	b.WriteString(fmt.Sprintf("Success rate: %.2f%%, avg return: %.2f%% (%d trades)",
		res.SuccessRatePct, res.AvgReturnPct, res.TradeCount))
	return b.String()
}

// FormatEvaluation formats the outcome of evaluating the stored parameters.
func FormatEvaluation(symbol string, res model.Result, ok bool) string {
	if !ok {
		return fmt.Sprintf("📊 <b>%s</b>\nNo trade realized for %s", symbol, formatParamsInline(res.Params))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", symbol, time.Now().Format("2006-01-02 15:04")))
	b.WriteString(formatParamsInline(res.Params) + "\n")
	b.WriteString(fmt.Sprintf("Trades: %d\n", res.TradeCount))
	b.WriteString(fmt.Sprintf("Success rate: %.2f%%\n", res.SuccessRatePct))
	b.WriteString(fmt.Sprintf("Avg return: %.2f%%", res.AvgReturnPct))
	return b.String()
}

// FormatSearchOutcome formats the summary of a grid search run.
func FormatSearchOutcome(symbol string, out *search.Outcome) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧬 <b>Strategy search</b> | %s\n\n", symbol))
	b.WriteString(fmt.Sprintf("Evaluated: %d/%d\n", out.Evaluated, out.Total))
	b.WriteString(fmt.Sprintf("Qualified: %d\n", len(out.Qualified)))
	if !out.Found() {
		b.WriteString("\n❌ No strategy qualified")
		return b.String()
	}
	best := out.Best
	b.WriteString("\n🏆 <b>Best:</b>\n")
	b.WriteString(formatParamsInline(best.Params) + "\n")
	b.WriteString(fmt.Sprintf("Success rate: %.2f%%, avg return: %.2f%% (%d trades)",
		best.SuccessRatePct, best.AvgReturnPct, best.TradeCount))
	if d := out.FinishedAt.Sub(out.StartedAt); d > 0 {
		b.WriteString(fmt.Sprintf("\nTook %s", d.Round(time.Millisecond)))
	}
	return b.String()
}

// FormatParams formats the active parameter set for display.
func FormatParams(p model.Params, stored bool, path string) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Strategy config</b>\n\n")
	b.WriteString(fmt.Sprintf("RSI threshold: %g\n", p.RSIThreshold))
	b.WriteString(fmt.Sprintf("Volume multiplier: %g\n", p.VolumeMultiplier))
	b.WriteString(fmt.Sprintf("Hours: %02d-%02d\n", p.HourStart, p.HourEnd))
	if stored {
		b.WriteString(fmt.Sprintf("Source: %s", path))
	} else {
		b.WriteString("Source: defaults")
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n\n" +
		"/config - show the active strategy config\n" +
		"/evaluate - backtest the active config\n" +
		"/evolve - run the parameter search\n" +
		"/help - show this message"
}

func formatParamsInline(p model.Params) string {
	return fmt.Sprintf("RSI < %g | vol > %gx | hours %02d-%02d",
		p.RSIThreshold, p.VolumeMultiplier, p.HourStart, p.HourEnd)
}
