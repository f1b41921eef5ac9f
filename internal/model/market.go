package model

import "time"

// Instrument is one watch-list entry.
type Instrument struct {
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	Name   string `yaml:"name" json:"name"`
}

// Title returns "Name (SYMBOL)", or just the symbol when no name is set.
func (i Instrument) Title() string {
	if i.Name == "" {
		return i.Symbol
	}
	return i.Name + " (" + i.Symbol + ")"
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds bars in ascending time order.
type PriceSeries []OHLCV

// Closes returns the closing prices as a new slice.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Last returns a new series holding at most the n most recent bars.
func (s PriceSeries) Last(n int) PriceSeries {
	if n <= 0 {
		return PriceSeries{}
	}
	start := len(s) - n
	if start < 0 {
		start = 0
	}
	out := make(PriceSeries, len(s)-start)
	copy(out, s[start:])
	return out
}

// PriceSnapshot is the current quote of an instrument.
type PriceSnapshot struct {
	Current       float64
	PreviousClose float64
	DayHigh       float64
	DayLow        float64
	Currency      string
}

// Valid reports whether the snapshot carries a usable current price.
func (p *PriceSnapshot) Valid() bool {
	return p != nil && p.Current > 0
}

// MarketData is everything fetched for one instrument in one cycle.
type MarketData struct {
	Instrument Instrument
	Snapshot   *PriceSnapshot
	History    PriceSeries
	ATH        *float64 // nil when unknown
	FXRate     float64  // 0 when no conversion is configured
	FXCurrency string
	FetchedAt  time.Time
}
