package model

import "time"

// RecommendationLabel is the discrete verdict of the composite score.
type RecommendationLabel string

const (
	StrongBuy RecommendationLabel = "STRONG_BUY"
	Buy       RecommendationLabel = "BUY"
	Wait      RecommendationLabel = "WAIT"
	Avoid     RecommendationLabel = "AVOID"
	Sell      RecommendationLabel = "SELL"
)

// TrendAssessment is the discretized trend over a history window.
type TrendAssessment struct {
	Label         string
	Score         int // -2..2
	ChangePercent float64
}

// VolatilityAssessment buckets the stddev of daily percentage returns.
type VolatilityAssessment struct {
	Label         string
	StdDevPercent float64
	Score         float64
}

// Recommendation is the composite verdict with its display color.
type Recommendation struct {
	Label          RecommendationLabel
	CompositeScore float64
	Color          string
}

// NarrativeResult is the text shown next to a signal.
// Enabled is true only when the text came from the language model.
type NarrativeResult struct {
	Enabled  bool
	Text     string
	Attempts int
}

// Signal is the evaluated state of one instrument.
type Signal struct {
	Indicators      Indicators
	IndicatorsKnown bool     // false without price history
	Technical       []string // RSI, MACD and moving-average readings
	Trend           TrendAssessment
	Volatility      VolatilityAssessment
	DistanceFromATH float64
	ATHKnown        bool
	ChangePercent   float64
	Recommendation  Recommendation
}

// SignalReport is the per-instrument output handed to a delivery sink.
type SignalReport struct {
	Instrument     Instrument
	Price          float64
	Currency       string
	ConvertedPrice float64
	FXCurrency     string
	PreviousClose  float64
	DayHigh        float64
	DayLow         float64
	ChangePercent  float64
	Trend          string
	Volatility     string
	ATHDistance    float64
	ATHKnown       bool
	Indicators     Indicators
	HasIndicators  bool
	Technical      []string
	Recommendation RecommendationLabel
	Narrative      NarrativeResult
	Color          string
	GeneratedAt    time.Time
}

// TriggerType indicates what started a cycle.
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerStartup   TriggerType = "STARTUP"
	TriggerManual    TriggerType = "MANUAL"
)

// CycleReport aggregates one pass over the watch-list.
type CycleReport struct {
	ID           string
	Trigger      TriggerType
	Forced       bool
	Skipped      bool
	StartedAt    time.Time
	Duration     time.Duration
	SuccessCount int
	ErrorCount   int
	SkippedCount int
}

// Evaluated returns the number of instruments the cycle looked at.
func (r CycleReport) Evaluated() int {
	return r.SuccessCount + r.ErrorCount + r.SkippedCount
}
