package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/cooldown"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/narrative"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSink counts delivered reports.
type countingSink struct {
	*notifier.ConsoleSink
	delivered int
}

func (s *countingSink) Deliver(ctx context.Context, r *model.SignalReport) error {
	s.delivered++
	return s.ConsoleSink.Deliver(ctx, r)
}

func newCycleServer(t *testing.T, cfg Config, admins ...string) (http.Handler, *countingSink) {
	t.Helper()
	mock := collector.NewMockFetcher()
	mock.Quotes["AAA"] = &model.PriceSnapshot{Current: 110, PreviousClose: 100, Currency: "USD"}
	sink := &countingSink{ConsoleSink: notifier.NewConsoleSink(io.Discard)}

	sched := scheduler.NewScheduler(scheduler.Deps{
		Watchlist: []model.Instrument{{Symbol: "AAA"}},
		Collector: collector.NewCollector(mock, mock, mock, zerolog.Nop()),
		Narrator:  narrative.NewAdapter(nil),
		Sink:      sink,
		Guard:     cooldown.NewGuard(cooldown.NewMemoryStore(), cooldown.DefaultWindow, admins, zerolog.Nop()),
		Quiet:     scheduler.DefaultQuietWindow,
		Location:  time.UTC,
		Log:       zerolog.Nop(),
	})
	return New(cfg, sched, nil, zerolog.Nop()).Handler(), sink
}

func postCycle(h http.Handler, remote, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/cycle", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRunCycle_CooldownFollowsClientAddress(t *testing.T) {
	h, sink := newCycleServer(t, Config{})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		rec := postCycle(h, "203.0.113.7:5000", fmt.Sprintf(`{"requester":"x%d"}`, i), nil)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 429, 429, 429, 429}, codes, "renaming the requester does not reset the cooldown")
	assert.Equal(t, 1, sink.delivered)

	rec := postCycle(h, "203.0.113.7:5001", `{"requester":"x9"}`, map[string]string{
		"X-Forwarded-For": "198.51.100.1",
		"X-Real-IP":       "198.51.100.2",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "forwarding headers are ignored by default")

	rec = postCycle(h, "203.0.113.8:5000", `{"requester":"x0"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "another client has its own window")
	assert.Equal(t, 2, sink.delivered)
}

func TestRunCycle_TrustProxy(t *testing.T) {
	h, _ := newCycleServer(t, Config{TrustProxy: true})

	rec := postCycle(h, "10.0.0.1:5000", `{"requester":"a"}`, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postCycle(h, "10.0.0.1:5000", `{"requester":"a"}`, map[string]string{"X-Forwarded-For": "198.51.100.2"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = postCycle(h, "10.0.0.1:5000", `{"requester":"b"}`, map[string]string{"X-Forwarded-For": "198.51.100.1"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRunCycle_AdminAddressExempt(t *testing.T) {
	h, sink := newCycleServer(t, Config{}, "http:203.0.113.9")

	for i := 0; i < 3; i++ {
		rec := postCycle(h, "203.0.113.9:5000", `{"requester":"ops"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, sink.delivered)
}

func TestRunCycle_APIToken(t *testing.T) {
	h, sink := newCycleServer(t, Config{APIToken: "s3cret"})

	rec := postCycle(h, "203.0.113.7:5000", `{"requester":"ops"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing key")

	rec = postCycle(h, "203.0.113.7:5000", `{"requester":"ops"}`, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, sink.delivered)

	rec = postCycle(h, "203.0.113.7:5000", `{"requester":"ops"}`, map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sink.delivered)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "token only guards /api")
}
