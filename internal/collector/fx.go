package collector

import (
	"context"

	"github.com/rs/zerolog"
)

// Defaults for the FX plausibility band.
const (
	DefaultFXMin      = 0.5
	DefaultFXMax      = 2.0
	DefaultFXFallback = 0.92
)

// FXGuard wraps an FXProvider and only trusts rates inside [Min, Max].
type FXGuard struct {
	Provider FXProvider
	Min      float64
	Max      float64
	Fallback float64
	Log      zerolog.Logger
}

// NewFXGuard creates a guard with the default band and fallback.
func NewFXGuard(p FXProvider, log zerolog.Logger) *FXGuard {
	return &FXGuard{
		Provider: p,
		Min:      DefaultFXMin,
		Max:      DefaultFXMax,
		Fallback: DefaultFXFallback,
		Log:      log,
	}
}

// Rate returns a plausible from→to rate. It never fails.
func (g *FXGuard) Rate(ctx context.Context, from, to string) float64 {
	if g.Provider == nil {
		return g.Fallback
	}
	rate, err := g.Provider.FetchRate(ctx, from, to)
	if err != nil {
		g.Log.Warn().Err(err).Str("pair", from+"/"+to).Float64("fallback", g.Fallback).Msg("fx rate unavailable")
		return g.Fallback
	}
	if rate < g.Min || rate > g.Max {
		g.Log.Warn().Float64("rate", rate).Str("pair", from+"/"+to).Float64("fallback", g.Fallback).Msg("fx rate out of range")
		return g.Fallback
	}
	return rate
}
