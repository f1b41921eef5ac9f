package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// DefaultFinnhubBaseURL is the Finnhub REST root.
const DefaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubFetcher implements QuoteProvider using the Finnhub REST API.
type FinnhubFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFinnhubFetcher creates a new fetcher with optional proxy support.
func NewFinnhubFetcher(apiKey, proxyURL string, timeout time.Duration) *FinnhubFetcher {
	return &FinnhubFetcher{
		BaseURL: DefaultFinnhubBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *FinnhubFetcher) Name() string { return "finnhub" }

// finnhubQuote is the JSON shape of /quote.
type finnhubQuote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// FetchQuote returns the current quote. Finnhub reports unknown symbols as all-zero quotes.
func (f *FinnhubFetcher) FetchQuote(ctx context.Context, symbol string) (*model.PriceSnapshot, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		strings.TrimRight(f.BaseURL, "/"), url.QueryEscape(symbol), url.QueryEscape(f.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("finnhub quote: status %d, body: %s", resp.StatusCode, string(body))
	}

	var q finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if q.Current <= 0 {
		return nil, fmt.Errorf("finnhub %s: %w", symbol, ErrNoQuote)
	}
	return &model.PriceSnapshot{
		Current:       q.Current,
		PreviousClose: q.PreviousClose,
		DayHigh:       q.High,
		DayLow:        q.Low,
		Currency:      "USD",
	}, nil
}
