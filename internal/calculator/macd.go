package calculator

import "SignalSentinel/internal/model"

// ComputeIndicators derives RSI, moving averages and MACD from closing prices.
//
// The MACD signal line is the 9-period EMA of the single current MACD value,
// which collapses to the MACD itself. Callers display it as-is.
func ComputeIndicators(closes []float64) model.Indicators {
	if len(closes) == 0 {
		return model.Indicators{RSI: 50}
	}

	ema12 := CalculateEMA(closes, 12)
	ema26 := CalculateEMA(closes, 26)
	macd := ema12 - ema26

	return model.Indicators{
		RSI:    CalculateRSI(closes, DefaultRSIPeriod),
		MACD:   macd,
		Signal: CalculateEMA([]float64{macd}, 9),
		SMA20:  CalculateSMA(closes, 20),
		SMA50:  CalculateSMA(closes, 50),
		EMA12:  ema12,
		EMA26:  ema26,
	}
}
