package narrative

import (
	"fmt"

	"SignalSentinel/internal/calculator"
)

// Fallback builds a rule-based recommendation from the 24h change alone.
// It never fails and never touches the network.
func Fallback(changePercent float64) string {
	pct := calculator.FormatPercent(changePercent)
	switch {
	case changePercent > 5:
		return fmt.Sprintf("**BUY** - Strong upward move (+%s%%)", pct)
	case changePercent > 2:
		return fmt.Sprintf("**HOLD** - Moderate uptrend (+%s%%)", pct)
	case changePercent < -5:
		return fmt.Sprintf("**SELL** - Sharp decline detected (%s%%)", pct)
	case changePercent < -2:
		return fmt.Sprintf("**WATCH** - Downward trend (%s%%)", pct)
	default:
		return fmt.Sprintf("**HOLD** - Price stable (%s%%)", pct)
	}
}
