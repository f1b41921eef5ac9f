package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/cooldown"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/narrative"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// app holds the wired components shared by the run and cycle commands.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	telegram *notifier.TelegramNotifier
	recorder recorder.Recorder
	sched    *scheduler.Scheduler
	closers  []func() error
}

// newApp wires every component from cfg. A nil sink delivers to Telegram.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, sink scheduler.Sink) (*app, error) {
	a := &app{cfg: cfg, log: log}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}
	start, end, enabled, err := config.ParseQuietHours(cfg.Schedule.QuietHours)
	if err != nil {
		return nil, fmt.Errorf("parse quiet hours: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	// Yahoo always serves history, ATH and FX; quotes may come from Finnhub.
	yahoo := collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	var quotes collector.QuoteProvider = yahoo
	if cfg.DataSource.Quotes == "finnhub" {
		quotes = collector.NewFinnhubFetcher(cfg.DataSource.FinnhubAPIKey, cfg.Proxy, cfg.DataSource.Timeout)
	}
	log.Info().Str("quotes", quotes.Name()).Str("history", yahoo.Name()).Msg("data sources")

	col := collector.NewCollector(quotes, yahoo, yahoo, logger.Component(log, "collector"))
	col.HistoryDays = cfg.DataSource.HistoryDays
	col.ATHYears = cfg.DataSource.ATHYears
	fx := collector.NewFXGuard(yahoo, logger.Component(log, "fx"))
	fx.Min, fx.Max, fx.Fallback = cfg.FX.Min, cfg.FX.Max, cfg.FX.Fallback
	col.FX = fx
	col.FXTarget = cfg.FX.Target

	var provider narrative.Provider
	if cfg.AI.APIKey != "" {
		provider = narrative.NewOpenAIProvider(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.Proxy)
	} else {
		log.Warn().Msg("no AI key configured, narratives use the fallback wording")
	}
	narrator := narrative.NewAdapter(provider,
		narrative.WithTimeout(cfg.AI.Timeout),
		narrative.WithMaxAttempts(cfg.AI.MaxAttempts),
		narrative.WithBackoff(cfg.AI.Backoff),
		narrative.WithMinLength(cfg.AI.MinLength),
		narrative.WithLogger(logger.Component(log, "narrative")),
		narrative.WithMetrics(m),
	)

	guard := cooldown.NewGuard(a.cooldownStore(ctx), cfg.Cooldown.Window, cfg.Admins(), logger.Component(log, "cooldown"))
	guard.Metrics = m

	a.recorder = a.openRecorder()
	a.closers = append(a.closers, a.recorder.Close)

	if sink == nil {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.Component(log, "telegram"))
		tn.LogChatID = cfg.Telegram.LogChatID
		tn.AdminUserID = cfg.Telegram.AdminUserID
		tn.PollTimeout = cfg.Telegram.PollTimeout
		a.telegram = tn
		sink = tn
	}

	a.sched = scheduler.NewScheduler(scheduler.Deps{
		Watchlist: cfg.Watchlist,
		Collector: col,
		Narrator:  narrator,
		Sink:      sink,
		Recorder:  a.recorder,
		Guard:     guard,
		Metrics:   m,
		Quiet:     scheduler.QuietWindow{Start: start, End: end, Enabled: enabled},
		Location:  loc,
		Log:       logger.Component(log, "scheduler"),
	})
	return a, nil
}

// cooldownStore returns the configured store. An unreachable Redis falls back
// to memory so manual triggers keep working.
func (a *app) cooldownStore(ctx context.Context) cooldown.Store {
	if a.cfg.Cooldown.Backend == "redis" {
		client, err := cooldown.NewRedisClient(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err == nil {
			a.closers = append(a.closers, client.Close)
			a.log.Info().Str("addr", a.cfg.Redis.Addr).Msg("cooldown store: redis")
			return cooldown.NewRedisStore(client, "")
		}
		a.log.Warn().Err(err).Msg("redis unavailable, cooldown store falls back to memory")
	}
	store := cooldown.NewMemoryStore()
	a.closers = append(a.closers, func() error { store.Close(); return nil })
	return store
}

func (a *app) openRecorder() recorder.Recorder {
	path := a.cfg.Database.SQLitePath
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			a.log.Warn().Err(err).Msg("create sqlite dir failed, using noop recorder")
			return recorder.NewNoopRecorder()
		}
	}
	rec, err := recorder.NewSQLiteRecorder(path, logger.Component(a.log, "recorder"))
	if err != nil {
		a.log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return rec
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}
