package collector

import (
	"context"

	"SignalSentinel/internal/model"
)

// QuoteProvider returns the current quote of a symbol.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*model.PriceSnapshot, error)
	Name() string
}

// HistoryProvider returns daily bars covering the last days calendar days.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, days int) (model.PriceSeries, error)
}

// ATHProvider returns the highest price seen over the last years, or nil when unknown.
type ATHProvider interface {
	FetchAllTimeHigh(ctx context.Context, symbol string, years int) (*float64, error)
}

// FXProvider returns the conversion rate from one currency to another.
type FXProvider interface {
	FetchRate(ctx context.Context, from, to string) (float64, error)
}
