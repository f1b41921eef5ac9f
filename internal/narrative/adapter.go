// Package narrative asks a language model for a short recommendation and
// falls back to a rule-based sentence when the model is unavailable.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"

	"github.com/rs/zerolog"
)

// Defaults for a Ready adapter.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoff     = 2 * time.Second
	DefaultMinLength   = 10
)

// ErrTooShort is returned for responses below the minimum length.
var ErrTooShort = errors.New("narrative: response empty or too short")

// Provider returns free text for a prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Adapter turns signals into narrative text with bounded retries.
// A nil provider leaves the adapter permanently unconfigured.
type Adapter struct {
	provider    Provider
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	minLength   int
	log         zerolog.Logger
	metrics     *metrics.Recorder
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithMaxAttempts sets the total number of provider calls per Generate.
func WithMaxAttempts(n int) Option {
	return func(a *Adapter) { a.maxAttempts = n }
}

// WithBackoff sets the fixed wait between attempts.
func WithBackoff(d time.Duration) Option {
	return func(a *Adapter) { a.backoff = d }
}

// WithMinLength sets the shortest accepted response.
func WithMinLength(n int) Option {
	return func(a *Adapter) { a.minLength = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter creates an Adapter. Pass a nil provider when no credential is configured.
func NewAdapter(provider Provider, opts ...Option) *Adapter {
	a := &Adapter{
		provider:    provider,
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		minLength:   DefaultMinLength,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.maxAttempts < 1 {
		a.maxAttempts = 1
	}
	return a
}

// Configured reports whether a provider is set.
func (a *Adapter) Configured() bool {
	return a.provider != nil
}

// Generate returns narrative text for the input. The result always carries text.
func (a *Adapter) Generate(ctx context.Context, in Input) model.NarrativeResult {
	if !a.Configured() {
		return model.NarrativeResult{Text: Fallback(in.ChangePercent)}
	}

	prompt := BuildPrompt(in)
	symbol := in.Instrument.Symbol

	var lastErr error
	attempts := 0
	for attempts < a.maxAttempts {
		if attempts > 0 && !a.wait(ctx) {
			break
		}
		attempts++

		text, err := a.attempt(ctx, prompt)
		if err == nil {
			a.metrics.ObserveNarrative(metrics.SourceLLM, attempts)
			return model.NarrativeResult{Enabled: true, Text: text, Attempts: attempts}
		}
		lastErr = err
		a.log.Warn().Err(err).
			Str("symbol", symbol).
			Str("provider", a.provider.Name()).
			Int("attempt", attempts).
			Int("max_attempts", a.maxAttempts).
			Msg("narrative attempt failed")
	}

	text := Fallback(in.ChangePercent)
	a.log.Info().Err(lastErr).
		Str("symbol", symbol).
		Int("attempts", attempts).
		Str("fallback", text).
		Msg("using fallback narrative")
	a.metrics.ObserveNarrative(metrics.SourceFallback, attempts)
	return model.NarrativeResult{Text: text, Attempts: attempts}
}

func (a *Adapter) attempt(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.provider.Complete(callCtx, prompt)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("provider timeout after %v: %w", a.timeout, err)
		}
		return "", err
	}
	text = strings.TrimSpace(text)
	if len([]rune(text)) < a.minLength {
		return "", fmt.Errorf("%w: %d characters", ErrTooShort, len([]rune(text)))
	}
	return text, nil
}

// wait sleeps for the backoff; it returns false if ctx ends first.
func (a *Adapter) wait(ctx context.Context) bool {
	if a.backoff <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(a.backoff):
		return true
	}
}
