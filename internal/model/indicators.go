package model

// Indicators holds the technical indicators computed from a close series.
type Indicators struct {
	RSI    float64
	MACD   float64
	Signal float64
	SMA20  float64
	SMA50  float64
	EMA12  float64
	EMA26  float64
}
