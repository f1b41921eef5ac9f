package calculator

// CalculateSMA computes the simple moving average of the last period prices.
// With fewer values than period it returns the last value, or 0 for an empty series.
func CalculateSMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		return prices[len(prices)-1]
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}

// CalculateEMA computes the exponential moving average seeded with the SMA of the
// first period values. A series shorter than period degrades to its mean.
func CalculateEMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || len(prices) < period {
		return CalculateSMA(prices, len(prices))
	}

	k := 2.0 / float64(period+1)
	ema := CalculateSMA(prices[:period], period)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*k + ema
	}
	return ema
}
