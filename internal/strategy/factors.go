package strategy

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// MinSamples is the smallest window AssessTrend and AssessVolatility score.
const MinSamples = 30

// Trend and volatility labels.
const (
	TrendVeryBullish  = "very bullish"
	TrendBullish      = "bullish"
	TrendNeutral      = "neutral"
	TrendBearish      = "bearish"
	TrendVeryBearish  = "very bearish"
	TrendInsufficient = "insufficient data"

	VolatilityVeryLow  = "very low"
	VolatilityLow      = "low"
	VolatilityMedium   = "medium"
	VolatilityHigh     = "high"
	VolatilityVeryHigh = "very high"
	VolatilityUnknown  = "unknown"
)

// AssessTrend compares the mean of the first 30 closes with the mean of the last 30.
func AssessTrend(closes []float64) model.TrendAssessment {
	if len(closes) < MinSamples {
		return model.TrendAssessment{Label: TrendInsufficient}
	}

	first := calculator.Mean(closes[:MinSamples])
	last := calculator.Mean(closes[len(closes)-MinSamples:])
	if first <= 0 {
		return model.TrendAssessment{Label: TrendNeutral}
	}
	change := (last - first) / first * 100

	var score int
	var label string
	switch {
	case change > 15:
		score, label = 2, TrendVeryBullish
	case change > 5:
		score, label = 1, TrendBullish
	case change < -15:
		score, label = -2, TrendVeryBearish
	case change < -5:
		score, label = -1, TrendBearish
	default:
		score, label = 0, TrendNeutral
	}
	return model.TrendAssessment{Label: label, Score: score, ChangePercent: change}
}

// AssessVolatility buckets the population stddev of daily percentage returns.
func AssessVolatility(closes []float64) model.VolatilityAssessment {
	if len(closes) < MinSamples {
		return model.VolatilityAssessment{Label: VolatilityUnknown}
	}

	std := calculator.PopulationStdDev(calculator.DailyReturns(closes))

	var label string
	switch {
	case std < 1.5:
		label = VolatilityVeryLow
	case std < 2.5:
		label = VolatilityLow
	case std < 3.5:
		label = VolatilityMedium
	case std < 5:
		label = VolatilityHigh
	default:
		label = VolatilityVeryHigh
	}
	return model.VolatilityAssessment{Label: label, StdDevPercent: std, Score: std}
}

// athAdjustment treats prices close to the all-time high as risk and prices
// far below it as opportunity.
func athAdjustment(distance float64) float64 {
	switch {
	case distance < -40:
		return 2
	case distance < -25:
		return 1
	case distance > -5:
		return -2
	case distance > -15:
		return -1
	default:
		return 0
	}
}

// volatilityPenalty lowers the score of very volatile instruments.
func volatilityPenalty(volatilityScore float64) float64 {
	if volatilityScore > 4 {
		return -1
	}
	return 0
}
