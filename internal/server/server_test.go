package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SignalSentinel/internal/cooldown"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrigger struct {
	requesters []string
	last       *model.CycleReport
	busy       map[string]time.Duration
	panics     bool
}

func (f *fakeTrigger) TriggerManual(_ context.Context, requester string) (model.CycleReport, error) {
	if f.panics {
		panic("boom")
	}
	if left, ok := f.busy[requester]; ok {
		return model.CycleReport{}, &cooldown.WaitError{Remaining: left}
	}
	f.requesters = append(f.requesters, requester)
	r := model.CycleReport{ID: "01Z", Trigger: model.TriggerManual, Forced: true, SuccessCount: 6, Duration: 1500 * time.Millisecond}
	f.last = &r
	return r, nil
}

func (f *fakeTrigger) Last() *model.CycleReport { return f.last }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestServer(trig Trigger) (*Server, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New(Config{}, trig, reg, zerolog.Nop()), reg
}

func TestAliveAndHealth(t *testing.T) {
	trig := &fakeTrigger{}
	srv, _ := newTestServer(trig)

	rec := do(t, srv.Handler(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, AliveText, rec.Body.String())

	rec = do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	trig.last = &model.CycleReport{ID: "01A", Trigger: model.TriggerScheduled, SuccessCount: 3, StartedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	rec = do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.NotNil(t, health.LastCycle)
	assert.Equal(t, "01A", health.LastCycle.ID)
	assert.Equal(t, 3, health.LastCycle.SuccessCount)
	require.NotNil(t, health.LastRunAt)
}

func TestRunCycle(t *testing.T) {
	trig := &fakeTrigger{}
	srv, _ := newTestServer(trig)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/cycle", `{"requester":"ops"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status int           `json:"status"`
		Data   CycleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "01Z", resp.Data.ID)
	assert.Equal(t, 6, resp.Data.SuccessCount)
	assert.Equal(t, 1.5, resp.Data.DurationSecs)
	assert.Equal(t, []string{"http:192.0.2.1"}, trig.requesters, "keyed on the client address")
}

func TestRunCycle_Validation(t *testing.T) {
	srv, _ := newTestServer(&fakeTrigger{})

	rec := do(t, srv.Handler(), http.MethodPost, "/api/cycle", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_REQUIRED")
	assert.Contains(t, rec.Body.String(), "Requester is required")

	rec = do(t, srv.Handler(), http.MethodPost, "/api/cycle", `{"requester":"ops","source":"fax"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_ONEOF")

	rec = do(t, srv.Handler(), http.MethodPost, "/api/cycle", `{"requester":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunCycle_Cooldown(t *testing.T) {
	trig := &fakeTrigger{busy: map[string]time.Duration{"http:192.0.2.1": 12300 * time.Millisecond}}
	srv, _ := newTestServer(trig)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/cycle", `{"requester":"ops"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "13", rec.Header().Get("Retry-After"))

	var resp struct {
		Data CooldownResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 13, resp.Data.TimeLeftSeconds)
	assert.Empty(t, trig.requesters)
}

func TestRecoverMiddleware(t *testing.T) {
	srv, _ := newTestServer(&fakeTrigger{panics: true})
	rec := do(t, srv.Handler(), http.MethodPost, "/api/cycle", `{"requester":"ops"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, reg := newTestServer(&fakeTrigger{})
	m := metrics.New(reg)
	m.ObserveCycle("MANUAL", false, time.Second)

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sentinel_cycles_total{status="ran",trigger="MANUAL"} 1`)
}
