package cooldown

import (
	"context"
	"time"

	"SignalSentinel/internal/metrics"

	"github.com/rs/zerolog"
)

// Guard applies a Store to requesters, letting admins through.
type Guard struct {
	Store   Store
	Window  time.Duration
	Admins  map[string]struct{}
	Log     zerolog.Logger
	Metrics *metrics.Recorder
}

// NewGuard creates a Guard. A non-positive window uses DefaultWindow.
func NewGuard(store Store, window time.Duration, admins []string, log zerolog.Logger) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	g := &Guard{
		Store:  store,
		Window: window,
		Admins: make(map[string]struct{}, len(admins)),
		Log:    log,
	}
	for _, a := range admins {
		if a != "" {
			g.Admins[a] = struct{}{}
		}
	}
	return g
}

// IsAdmin reports whether requester bypasses the cooldown.
func (g *Guard) IsAdmin(requester string) bool {
	_, ok := g.Admins[requester]
	return ok
}

// Check reports whether requester may trigger now and, if not, how long to wait.
// A failing store lets the request through.
func (g *Guard) Check(ctx context.Context, requester string) (time.Duration, bool) {
	if g.IsAdmin(requester) {
		return 0, true
	}
	left, ok, err := g.Store.Acquire(ctx, requester, g.Window)
	if err != nil {
		g.Log.Error().Err(err).Str("requester", requester).Msg("cooldown store failed, allowing request")
		return 0, true
	}
	if !ok {
		g.Metrics.ObserveCooldownReject()
		g.Log.Info().Str("requester", requester).Int("time_left_s", Seconds(left)).Msg("manual trigger rejected by cooldown")
		return left, false
	}
	return 0, true
}
