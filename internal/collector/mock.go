package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without a configured quote fail with ErrNoQuote.
type MockFetcher struct {
	mu      sync.Mutex
	Quotes  map[string]*model.PriceSnapshot
	History map[string]model.PriceSeries
	Highs   map[string]float64
	Errors  map[string]error
	FXRate  float64
	FXErr   error
	calls   map[string]int
}

// NewMockFetcher creates an empty MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Quotes:  map[string]*model.PriceSnapshot{},
		History: map[string]model.PriceSeries{},
		Highs:   map[string]float64{},
		Errors:  map[string]error{},
		calls:   map[string]int{},
	}
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many quotes were requested for symbol.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (*model.PriceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[symbol]++
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoQuote)
	}
	cp := *q
	return &cp, nil
}

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, _ int) (model.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.History[symbol]
	if !ok {
		return nil, fmt.Errorf("mock %s: no history", symbol)
	}
	out := make(model.PriceSeries, len(h))
	copy(out, h)
	return out, nil
}

func (m *MockFetcher) FetchAllTimeHigh(_ context.Context, symbol string, _ int) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Highs[symbol]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *MockFetcher) FetchRate(_ context.Context, _, _ string) (float64, error) {
	if m.FXErr != nil {
		return 0, m.FXErr
	}
	return m.FXRate, nil
}

// FlatSeries builds n daily bars closing at price, oldest first.
func FlatSeries(price float64, n int, end time.Time) model.PriceSeries {
	return RampSeries(price, price, n, end)
}

// RampSeries builds n daily bars moving linearly from first to last.
func RampSeries(first, last float64, n int, end time.Time) model.PriceSeries {
	bars := make(model.PriceSeries, n)
	for i := 0; i < n; i++ {
		p := first
		if n > 1 {
			p = first + (last-first)*float64(i)/float64(n-1)
		}
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(n - 1 - i)),
			Open:   p,
			High:   p,
			Low:    p,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
