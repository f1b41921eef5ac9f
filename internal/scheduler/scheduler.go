package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalSentinel/internal/cooldown"
	"SignalSentinel/internal/id"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/narrative"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/strategy"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultCron fires at the top of every hour.
const DefaultCron = "0 0 * * * *"

// Collector fetches the joined facts of one instrument.
type Collector interface {
	Collect(ctx context.Context, inst model.Instrument) (*model.MarketData, error)
}

// Narrator turns a signal into narrative text.
type Narrator interface {
	Generate(ctx context.Context, in narrative.Input) model.NarrativeResult
}

// Sink delivers reports and operational messages.
type Sink interface {
	Deliver(ctx context.Context, r *model.SignalReport) error
	Notify(ctx context.Context, text string) error
	Alert(ctx context.Context, text string) error
}

// Deps are the collaborators of a Scheduler. Recorder, Guard and Metrics are optional.
type Deps struct {
	Watchlist []model.Instrument
	Collector Collector
	Narrator  Narrator
	Sink      Sink
	Recorder  recorder.Recorder
	Guard     *cooldown.Guard
	Metrics   *metrics.Recorder
	Quiet     QuietWindow
	Location  *time.Location
	Log       zerolog.Logger
}

// Scheduler runs alert cycles on a cron cadence and on demand.
type Scheduler struct {
	Deps
	Now func() time.Time

	cron  *cron.Cron
	entry cron.EntryID

	runMu sync.Mutex     // one cycle at a time
	bg    sync.WaitGroup // cycles started by RunInBackground

	mu   sync.RWMutex
	last *model.CycleReport
}

// NewScheduler creates a new Scheduler.
func NewScheduler(d Deps) *Scheduler {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Recorder == nil {
		d.Recorder = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Deps: d,
		Now:  time.Now,
		cron: cron.New(cron.WithSeconds(), cron.WithLocation(d.Location)),
	}
}

// Start registers the cycle on spec and starts the cron scheduler.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultCron
	}
	entry, err := s.cron.AddFunc(spec, func() {
		s.RunCycle(ctx, model.TriggerScheduled, false)
	})
	if err != nil {
		return fmt.Errorf("register cycle %q: %w", spec, err)
	}
	s.entry = entry
	s.cron.Start()
	s.Log.Info().Str("cron", spec).Str("tz", s.Location.String()).Time("next", s.Next()).Msg("scheduler started")
	return nil
}

// Stop stops the cron scheduler and waits for running cron and background
// cycles to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.bg.Wait()
	s.Log.Info().Msg("scheduler stopped")
}

// RunInBackground starts a cycle in its own goroutine. Stop waits for it.
func (s *Scheduler) RunInBackground(ctx context.Context, trigger model.TriggerType, force bool) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		s.RunCycle(ctx, trigger, force)
	}()
}

// Next returns the next scheduled run, or the zero time when not started.
func (s *Scheduler) Next() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// Last returns a copy of the last cycle report, or nil.
func (s *Scheduler) Last() *model.CycleReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

func (s *Scheduler) setLast(r model.CycleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &r
}

// RunCycle evaluates the watch-list once. Unless forced, it does nothing
// during quiet hours.
func (s *Scheduler) RunCycle(ctx context.Context, trigger model.TriggerType, force bool) model.CycleReport {
	now := s.Now()
	report := model.CycleReport{
		ID:        id.New(now),
		Trigger:   trigger,
		Forced:    force,
		StartedAt: now,
	}
	log := s.Log.With().Str("cycle_id", report.ID).Str("trigger", string(trigger)).Logger()

	if !force && s.Quiet.Contains(now.In(s.Location).Hour()) {
		report.Skipped = true
		log.Info().Int("hour", now.In(s.Location).Hour()).Msg("quiet hours, cycle skipped")
		s.Metrics.ObserveCycle(string(trigger), true, 0)
		s.record(ctx, report, log)
		return report
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	log.Info().Int("instruments", len(s.Watchlist)).Bool("forced", force).Msg("cycle started")
	if err := s.Sink.Notify(ctx, notifier.FormatCycleStart(trigger, report.ID)); err != nil {
		log.Warn().Err(err).Msg("send cycle start")
	}

	for _, inst := range s.Watchlist {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("cycle interrupted")
			break
		}
		switch s.evaluate(ctx, inst, log) {
		case metrics.OutcomeSuccess:
			report.SuccessCount++
		case metrics.OutcomeError:
			report.ErrorCount++
		default:
			report.SkippedCount++
		}
	}

	report.Duration = time.Since(start)
	s.setLast(report)
	s.Metrics.ObserveCycle(string(trigger), false, report.Duration)
	s.record(ctx, report, log)

	log.Info().
		Int("success", report.SuccessCount).
		Int("errors", report.ErrorCount).
		Int("skipped", report.SkippedCount).
		Dur("duration", report.Duration).
		Msg("cycle finished")

	summary := notifier.FormatCycleSummary(report)
	var err error
	if report.ErrorCount > 0 || (report.SuccessCount == 0 && report.Evaluated() > 0) {
		err = s.Sink.Alert(ctx, summary)
	} else {
		err = s.Sink.Notify(ctx, summary)
	}
	if err != nil {
		log.Warn().Err(err).Msg("send cycle summary")
	}
	return report
}

// evaluate handles one instrument and returns its outcome. A panic counts as an error.
func (s *Scheduler) evaluate(ctx context.Context, inst model.Instrument, log zerolog.Logger) (outcome string) {
	log = log.With().Str("symbol", inst.Symbol).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("instrument evaluation panicked")
			outcome = metrics.OutcomeError
		}
		s.Metrics.ObserveInstrument(outcome)
	}()

	data, err := s.Collector.Collect(ctx, inst)
	if err != nil {
		log.Warn().Err(err).Msg("no data, instrument skipped")
		return metrics.OutcomeSkipped
	}

	sig := strategy.Evaluate(data)
	narr := s.Narrator.Generate(ctx, narrative.Input{
		Instrument:    inst,
		Snapshot:      data.Snapshot,
		ChangePercent: sig.ChangePercent,
		Signal:        sig,
	})
	report := BuildReport(data, sig, narr, s.Now().In(s.Location))
	s.Metrics.ObserveSignal(inst.Symbol, report.Price, sig.Recommendation.CompositeScore)

	if err := s.Sink.Deliver(ctx, report); err != nil {
		log.Error().Err(err).Msg("deliver report")
		return metrics.OutcomeError
	}
	log.Info().
		Str("recommendation", string(report.Recommendation)).
		Float64("score", sig.Recommendation.CompositeScore).
		Float64("rsi", sig.Indicators.RSI).
		Float64("macd", sig.Indicators.MACD).
		Bool("ai", narr.Enabled).
		Msg("report delivered")
	return metrics.OutcomeSuccess
}

func (s *Scheduler) record(ctx context.Context, report model.CycleReport, log zerolog.Logger) {
	if err := s.Recorder.RecordCycle(ctx, recorder.FromReport(report)); err != nil {
		log.Error().Err(err).Msg("record cycle")
	}
}

// BuildReport assembles the delivery contract of one instrument.
func BuildReport(data *model.MarketData, sig *model.Signal, narr model.NarrativeResult, at time.Time) *model.SignalReport {
	snap := data.Snapshot
	r := &model.SignalReport{
		Instrument:     data.Instrument,
		Price:          snap.Current,
		Currency:       snap.Currency,
		PreviousClose:  snap.PreviousClose,
		DayHigh:        snap.DayHigh,
		DayLow:         snap.DayLow,
		ChangePercent:  sig.ChangePercent,
		Trend:          sig.Trend.Label,
		Volatility:     sig.Volatility.Label,
		ATHDistance:    sig.DistanceFromATH,
		ATHKnown:       sig.ATHKnown,
		Indicators:     sig.Indicators,
		HasIndicators:  sig.IndicatorsKnown,
		Technical:      sig.Technical,
		Recommendation: sig.Recommendation.Label,
		Narrative:      narr,
		Color:          sig.Recommendation.Color,
		GeneratedAt:    at,
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
	if data.FXRate > 0 && data.FXCurrency != "" {
		r.ConvertedPrice = snap.Current * data.FXRate
		r.FXCurrency = data.FXCurrency
	}
	return r
}
