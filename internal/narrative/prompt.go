package narrative

import (
	"fmt"
	"strings"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// MaxPromptBytes bounds the prompt sent to the provider.
const MaxPromptBytes = 1000

// Input carries everything the prompt may mention.
type Input struct {
	Instrument    model.Instrument
	Snapshot      *model.PriceSnapshot
	ChangePercent float64
	Signal        *model.Signal // optional context
}

// BuildPrompt renders a short prompt asking for a one-sentence recommendation.
func BuildPrompt(in Input) string {
	var b strings.Builder

	price, currency := 0.0, ""
	if in.Snapshot != nil {
		price, currency = in.Snapshot.Current, in.Snapshot.Currency
	}
	if currency == "" {
		currency = "USD"
	}

	b.WriteString(fmt.Sprintf("Instrument: %s\n", in.Instrument.Title()))
	b.WriteString(fmt.Sprintf("Price: %.2f %s\n", price, currency))
	b.WriteString(fmt.Sprintf("24h change: %s%%\n", calculator.FormatPercent(in.ChangePercent)))

	if s := in.Signal; s != nil {
		if s.Trend.Label != "" {
			b.WriteString(fmt.Sprintf("Trend (6 months): %s\n", s.Trend.Label))
		}
		if s.Volatility.Label != "" {
			b.WriteString(fmt.Sprintf("Volatility: %s (%.2f%% daily)\n", s.Volatility.Label, s.Volatility.StdDevPercent))
		}
		if s.ATHKnown {
			b.WriteString(fmt.Sprintf("Distance from all-time high: %.1f%%\n", s.DistanceFromATH))
		}
		if s.IndicatorsKnown {
			ind := s.Indicators
			b.WriteString(fmt.Sprintf("RSI(14): %.1f, MACD: %.2f, SMA20: %.2f, SMA50: %.2f\n", ind.RSI, ind.MACD, ind.SMA20, ind.SMA50))
			if len(s.Technical) > 0 {
				b.WriteString("Technical signals: " + strings.Join(s.Technical, "; ") + "\n")
			}
		}
	}

	b.WriteString("\nRecommend in one short sentence starting with **BUY**, **SELL**, **HOLD** or **WATCH** followed by the reason.\n")
	b.WriteString(`Example: "**BUY** - Strong upward trend"`)

	prompt := b.String()
	if len(prompt) > MaxPromptBytes {
		prompt = strings.ToValidUTF8(prompt[:MaxPromptBytes], "")
	}
	return prompt
}
