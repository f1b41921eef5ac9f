package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// ChangePercent returns the move from previousClose to current in percent,
// rounded to two decimals. A missing previous close yields 0.
func ChangePercent(current, previousClose float64) float64 {
	if previousClose <= 0 {
		return 0
	}
	pct := decimal.NewFromFloat(current).
		Sub(decimal.NewFromFloat(previousClose)).
		Div(decimal.NewFromFloat(previousClose)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := pct.Float64()
	return f
}

// FormatPercent renders a percentage rounded to two decimals without trailing
// zeros, e.g. 10 -> "10", 3.50 -> "3.5", -6.25 -> "-6.25".
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).Round(2).String()
}

// DailyReturns returns the percentage change between consecutive prices.
// Pairs with a non-positive base are skipped.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	return returns
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev returns the population standard deviation, 0 for an empty slice.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := Mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	return math.Sqrt(variance / float64(len(values)))
}
