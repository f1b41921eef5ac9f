package strategy

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// TrendWeight multiplies the trend score in the composite.
const TrendWeight = 3.0

// Tiers maps composite scores to recommendations, highest first.
var Tiers = []struct {
	MinScore       float64
	Recommendation model.Recommendation
}{
	{5, model.Recommendation{Label: model.StrongBuy, Color: "#00ff00"}},
	{2, model.Recommendation{Label: model.Buy, Color: "#90EE90"}},
	{-2, model.Recommendation{Label: model.Wait, Color: "#FFD700"}},
	{-5, model.Recommendation{Label: model.Avoid, Color: "#FFA500"}},
}

// DefaultRecommendation applies to scores below every tier.
var DefaultRecommendation = model.Recommendation{Label: model.Sell, Color: "#ff0000"}

// mapRecommendation maps a composite score to a Recommendation.
func mapRecommendation(score float64) model.Recommendation {
	rec := DefaultRecommendation
	for _, t := range Tiers {
		if score >= t.MinScore {
			rec = t.Recommendation
			break
		}
	}
	rec.CompositeScore = score
	return rec
}

// Compose weighs trend, distance from the all-time high and volatility into a recommendation.
func Compose(trend model.TrendAssessment, vol model.VolatilityAssessment, distanceFromATH float64) model.Recommendation {
	score := TrendWeight*float64(trend.Score) +
		athAdjustment(distanceFromATH) +
		volatilityPenalty(vol.Score)
	return mapRecommendation(score)
}

// Evaluate computes the full signal for one instrument's market data.
func Evaluate(data *model.MarketData) *model.Signal {
	closes := data.History.Closes()

	var current, prevClose float64
	if data.Snapshot != nil {
		current = data.Snapshot.Current
		prevClose = data.Snapshot.PreviousClose
	}

	ind := calculator.ComputeIndicators(closes)
	trend := AssessTrend(closes)
	vol := AssessVolatility(closes)
	distance, known := calculator.DistanceFromATH(current, data.ATH)

	sig := &model.Signal{
		Indicators:      ind,
		IndicatorsKnown: len(closes) > 0,
		Trend:           trend,
		Volatility:      vol,
		DistanceFromATH: distance,
		ATHKnown:        known,
		ChangePercent:   calculator.ChangePercent(current, prevClose),
		Recommendation:  Compose(trend, vol, distance),
	}
	if sig.IndicatorsKnown {
		sig.Technical = TechnicalSignals(current, ind)
	}
	return sig
}
