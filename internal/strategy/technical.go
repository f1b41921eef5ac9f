package strategy

import "SignalSentinel/internal/model"

// RSI thresholds for the technical signal lines.
const (
	RSIOversold    = 30.0
	RSIOverbought  = 70.0
	RSINeutralLow  = 40.0
	RSINeutralHigh = 60.0
)

// Technical signal lines, in display order.
const (
	SignalRSIOversold   = "📉 RSI oversold (buying opportunity)"
	SignalRSIOverbought = "📈 RSI overbought (caution)"
	SignalRSINeutral    = "➡️ RSI neutral"
	SignalMACDPositive  = "✅ MACD positive (bullish momentum)"
	SignalMACDNegative  = "⚠️ MACD negative (bearish momentum)"
	SignalUptrend       = "🚀 Uptrend confirmed (price > SMA20 > SMA50)"
	SignalDowntrend     = "📉 Downtrend (price < SMA20 < SMA50)"
)

// TechnicalSignals reads RSI, MACD and moving-average alignment into
// human-readable lines. RSI between the neutral band and the extremes
// yields no RSI line; a MACD of exactly zero reads as negative.
func TechnicalSignals(price float64, ind model.Indicators) []string {
	var out []string

	switch {
	case ind.RSI < RSIOversold:
		out = append(out, SignalRSIOversold)
	case ind.RSI > RSIOverbought:
		out = append(out, SignalRSIOverbought)
	case ind.RSI >= RSINeutralLow && ind.RSI <= RSINeutralHigh:
		out = append(out, SignalRSINeutral)
	}

	if ind.MACD > 0 {
		out = append(out, SignalMACDPositive)
	} else {
		out = append(out, SignalMACDNegative)
	}

	if price > ind.SMA20 && ind.SMA20 > ind.SMA50 {
		out = append(out, SignalUptrend)
	} else if price < ind.SMA20 && ind.SMA20 < ind.SMA50 {
		out = append(out, SignalDowntrend)
	}
	return out
}
