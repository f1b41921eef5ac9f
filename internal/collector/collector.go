package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"SignalSentinel/internal/model"

	"github.com/rs/zerolog"
)

// ErrNoQuote means no usable current price could be obtained.
var ErrNoQuote = errors.New("no current price")

// Defaults for the history and ATH windows.
const (
	DefaultHistoryDays = 180
	DefaultATHYears    = 5
)

// Collector joins the facts of one instrument.
type Collector struct {
	Quotes      QuoteProvider
	History     HistoryProvider // optional
	ATH         ATHProvider     // optional
	FX          *FXGuard        // optional
	FXTarget    string          // currency to convert into, "" disables conversion
	HistoryDays int
	ATHYears    int
	Log         zerolog.Logger
	Now         func() time.Time
}

// NewCollector creates a Collector with default windows.
func NewCollector(quotes QuoteProvider, history HistoryProvider, ath ATHProvider, log zerolog.Logger) *Collector {
	return &Collector{
		Quotes:      quotes,
		History:     history,
		ATH:         ath,
		HistoryDays: DefaultHistoryDays,
		ATHYears:    DefaultATHYears,
		Log:         log,
		Now:         time.Now,
	}
}

// Collect fetches quote, history and ATH concurrently and joins them.
// Only a missing quote is an error; history and ATH failures degrade.
func (c *Collector) Collect(ctx context.Context, inst model.Instrument) (*model.MarketData, error) {
	var (
		wg       sync.WaitGroup
		snap     *model.PriceSnapshot
		quoteErr error
		history  model.PriceSeries
		ath      *float64
	)
	log := c.Log.With().Str("symbol", inst.Symbol).Logger()

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap, quoteErr = c.Quotes.FetchQuote(ctx, inst.Symbol)
	}()

	if c.History != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bars, err := c.History.FetchHistory(ctx, inst.Symbol, c.historyDays())
			if err != nil {
				log.Warn().Err(err).Msg("history unavailable, continuing without")
				return
			}
			history = bars
		}()
	}

	if c.ATH != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.ATH.FetchAllTimeHigh(ctx, inst.Symbol, c.athYears())
			if err != nil {
				log.Warn().Err(err).Msg("all-time high unavailable")
				return
			}
			ath = v
		}()
	}

	wg.Wait()

	if quoteErr != nil {
		if errors.Is(quoteErr, ErrNoQuote) {
			return nil, quoteErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNoQuote, quoteErr)
	}
	if !snap.Valid() {
		return nil, fmt.Errorf("%s: %w", inst.Symbol, ErrNoQuote)
	}
	if history == nil {
		history = model.PriceSeries{}
	}

	data := &model.MarketData{
		Instrument: inst,
		Snapshot:   snap,
		History:    history,
		ATH:        ath,
		FetchedAt:  c.now(),
	}

	if c.FX != nil && c.FXTarget != "" {
		from := snap.Currency
		if from == "" {
			from = "USD"
		}
		if !strings.EqualFold(from, c.FXTarget) {
			data.FXRate = c.FX.Rate(ctx, from, c.FXTarget)
			data.FXCurrency = strings.ToUpper(c.FXTarget)
		}
	}
	return data, nil
}

func (c *Collector) historyDays() int {
	if c.HistoryDays <= 0 {
		return DefaultHistoryDays
	}
	return c.HistoryDays
}

func (c *Collector) athYears() int {
	if c.ATHYears <= 0 {
		return DefaultATHYears
	}
	return c.ATHYears
}

func (c *Collector) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
