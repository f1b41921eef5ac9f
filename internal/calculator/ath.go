package calculator

import "SignalSentinel/internal/model"

// DefaultATHDistance is used when the all-time high is unknown.
const DefaultATHDistance = -50.0

// AllTimeHigh scans the bars and returns the highest high, or nil when there is no usable bar.
// Bars without a high fall back to their close.
func AllTimeHigh(bars model.PriceSeries) *float64 {
	var high float64
	for _, b := range bars {
		v := b.High
		if v == 0 {
			v = b.Close
		}
		if v > high {
			high = v
		}
	}
	if high <= 0 {
		return nil
	}
	return &high
}

// DistanceFromATH returns how far current sits below the all-time high, in percent.
// An unknown ATH yields DefaultATHDistance. A current price above the recorded ATH
// is itself the new high, so the result is never positive.
func DistanceFromATH(current float64, ath *float64) (distance float64, known bool) {
	if ath == nil || *ath <= 0 || current <= 0 {
		return DefaultATHDistance, false
	}
	high := *ath
	if current > high {
		high = current
	}
	return (current - high) / high * 100, true
}
