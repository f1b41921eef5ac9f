package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// DefaultYahooBaseURL is the public chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements every provider interface on top of the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

type yahooMeta struct {
	Currency             string  `json:"currency"`
	Symbol               string  `json:"symbol"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	PreviousClose        float64 `json:"previousClose"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
}

type yahooResult struct {
	Meta       yahooMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []interface{} `json:"open"`
			High   []interface{} `json:"high"`
			Low    []interface{} `json:"low"`
			Close  []interface{} `json:"close"`
			Volume []interface{} `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(vals []interface{}, i int) float64 {
	if i >= len(vals) {
		return 0
	}
	return toFloat(vals[i])
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (*yahooResult, error) {
	base := strings.TrimRight(f.BaseURL, "/")
	if base == "" {
		base = DefaultYahooBaseURL
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		base, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, errors.New("yahoo: no result returned")
	}
	return &chart.Chart.Result[0], nil
}

func (r *yahooResult) bars() model.PriceSeries {
	if len(r.Indicators.Quote) == 0 {
		return model.PriceSeries{}
	}
	quote := r.Indicators.Quote[0]
	bars := make(model.PriceSeries, 0, len(r.Timestamp))

	for i, ts := range r.Timestamp {
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		c := at(quote.Close, i)
		if c == 0 {
			continue // null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

// FetchQuote reads the current quote from the chart metadata.
func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (*model.PriceSnapshot, error) {
	res, err := f.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}
	m := res.Meta
	if m.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoQuote)
	}
	prev := m.ChartPreviousClose
	if prev <= 0 {
		prev = m.PreviousClose
	}
	return &model.PriceSnapshot{
		Current:       m.RegularMarketPrice,
		PreviousClose: prev,
		DayHigh:       m.RegularMarketDayHigh,
		DayLow:        m.RegularMarketDayLow,
		Currency:      m.Currency,
	}, nil
}

// FetchHistory returns daily bars covering the last days calendar days.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, days int) (model.PriceSeries, error) {
	rng := "2y"
	switch {
	case days <= 30:
		rng = "1mo"
	case days <= 90:
		rng = "3mo"
	case days <= 180:
		rng = "6mo"
	case days <= 365:
		rng = "1y"
	}
	res, err := f.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	bars := res.bars()
	if len(bars) == 0 {
		return nil, errors.New("yahoo: no data returned")
	}
	return bars, nil
}

// athRange picks the smallest chart range covering years. The chart API
// only accepts fixed ranges.
func athRange(years int) string {
	switch {
	case years <= 0:
		return "5y"
	case years == 1:
		return "1y"
	case years == 2:
		return "2y"
	case years <= 5:
		return "5y"
	case years <= 10:
		return "10y"
	default:
		return "max"
	}
}

// FetchAllTimeHigh returns the highest weekly high over the last years.
func (f *YahooFetcher) FetchAllTimeHigh(ctx context.Context, symbol string, years int) (*float64, error) {
	res, err := f.fetchChart(ctx, symbol, "1wk", athRange(years))
	if err != nil {
		return nil, err
	}
	return calculator.AllTimeHigh(res.bars()), nil
}

// FetchRate quotes the from/to pair, e.g. USD→EUR through "USDEUR=X".
func (f *YahooFetcher) FetchRate(ctx context.Context, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}
	res, err := f.fetchChart(ctx, from+to+"=X", "1d", "1d")
	if err != nil {
		return 0, err
	}
	if res.Meta.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("yahoo: no rate for %s/%s", from, to)
	}
	return res.Meta.RegularMarketPrice, nil
}
