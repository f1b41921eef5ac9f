package notifier

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

var boldMarkdown = regexp.MustCompile(`\*\*(.+?)\*\*`)

var signalBadges = map[model.RecommendationLabel]string{
	model.StrongBuy: "🟢 Strong buy",
	model.Buy:       "🟢 Buy",
	model.Wait:      "🟡 Wait",
	model.Avoid:     "🟠 Avoid",
	model.Sell:      "🔴 Sell",
}

// narrativeHTML escapes model text and turns **bold** into <b>bold</b>.
func narrativeHTML(text string) string {
	return boldMarkdown.ReplaceAllString(html.EscapeString(text), "<b>$1</b>")
}

// signedPercent renders 10 as "+10%" and -3.5 as "-3.5%".
func signedPercent(v float64) string {
	s := calculator.FormatPercent(v)
	if v > 0 && !strings.HasPrefix(s, "+") && s != "0" {
		s = "+" + s
	}
	return s + "%"
}

// FormatSignalReport formats one instrument report into a Telegram message.
func FormatSignalReport(r *model.SignalReport) string {
	var b strings.Builder

	emoji := "📈"
	if r.ChangePercent < 0 {
		emoji = "📉"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b>\n\n", emoji, html.EscapeString(r.Instrument.Title())))

	b.WriteString(fmt.Sprintf("💰 Price: %.2f %s", r.Price, r.Currency))
	if r.ConvertedPrice > 0 && r.FXCurrency != "" {
		b.WriteString(fmt.Sprintf(" (≈ %.2f %s)", r.ConvertedPrice, r.FXCurrency))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("📊 24h change: %s\n", signedPercent(r.ChangePercent)))

	badge, ok := signalBadges[r.Recommendation]
	if !ok {
		badge = string(r.Recommendation)
	}
	b.WriteString(fmt.Sprintf("🎯 Signal: %s\n", badge))

	if r.DayHigh > 0 || r.DayLow > 0 {
		b.WriteString(fmt.Sprintf("📈 Day high: %.2f | 📉 Day low: %.2f\n", r.DayHigh, r.DayLow))
	}
	if r.PreviousClose > 0 {
		b.WriteString(fmt.Sprintf("🔒 Previous close: %.2f\n", r.PreviousClose))
	}

	b.WriteString(fmt.Sprintf("🧭 Trend (6m): %s | Volatility: %s\n", r.Trend, r.Volatility))
	if r.ATHKnown {
		b.WriteString(fmt.Sprintf("🏔 From all-time high: %.1f%%\n", r.ATHDistance))
	} else {
		b.WriteString("🏔 From all-time high: unknown\n")
	}

	if r.HasIndicators {
		ind := r.Indicators
		b.WriteString(fmt.Sprintf("🔬 RSI: %.1f | MACD: %.2f | SMA20: %.2f | SMA50: %.2f\n", ind.RSI, ind.MACD, ind.SMA20, ind.SMA50))
		for _, line := range r.Technical {
			b.WriteString(html.EscapeString(line) + "\n")
		}
	}

	if r.Narrative.Enabled {
		b.WriteString("\n🤖 <b>AI analysis</b>\n")
	} else {
		b.WriteString("\n💡 <b>Recommendation</b>\n")
	}
	b.WriteString(narrativeHTML(r.Narrative.Text))
	b.WriteString("\n\n")

	footer := "💡 Rule-based signal • hourly cycle"
	if r.Narrative.Enabled {
		footer = "🤖 AI analysis"
	}
	b.WriteString(fmt.Sprintf("<i>%s • %s</i>", footer, r.GeneratedAt.Format("2006-01-02 15:04 MST")))
	return b.String()
}

// FormatCycleStart announces a cycle on the log chat.
func FormatCycleStart(trigger model.TriggerType, id string) string {
	return fmt.Sprintf("📊 Cycle started (%s) <code>%s</code>", strings.ToLower(string(trigger)), id)
}

// FormatCycleSummary reports the outcome of one cycle.
func FormatCycleSummary(r model.CycleReport) string {
	if r.Skipped {
		return fmt.Sprintf("🌙 Quiet hours, %s cycle skipped", strings.ToLower(string(r.Trigger)))
	}
	icon := "✅"
	if r.SuccessCount == 0 && r.Evaluated() > 0 {
		icon = "⚠️"
	}
	return fmt.Sprintf("%s Cycle finished: %d success, %d errors, %d skipped (%s) <code>%s</code>",
		icon, r.SuccessCount, r.ErrorCount, r.SkippedCount,
		r.Duration.Round(100*time.Millisecond), r.ID)
}

// FormatStatus describes the last cycle for the /status command.
func FormatStatus(last *model.CycleReport, next time.Time, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("📟 <b>SignalSentinel status</b>\n\n")
	if last == nil {
		b.WriteString("No cycle has run yet.\n")
	} else {
		b.WriteString(fmt.Sprintf("Last cycle: %s (%s)\n",
			last.StartedAt.In(loc).Format("2006-01-02 15:04"), strings.ToLower(string(last.Trigger))))
		b.WriteString(FormatCycleSummary(*last))
		b.WriteString("\n")
	}
	if !next.IsZero() {
		b.WriteString(fmt.Sprintf("Next scheduled cycle: %s\n", next.In(loc).Format("2006-01-02 15:04 MST")))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n" +
		"/test - run an analysis cycle now\n" +
		"/cycle - same as /test\n" +
		"/status - last cycle and next run"
}
