package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Narrative sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// Instrument outcomes within a cycle.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Recorder holds the Prometheus collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	cycles            *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	instruments       *prometheus.CounterVec
	narrativeResults  *prometheus.CounterVec
	narrativeAttempts prometheus.Counter
	cooldownRejects   prometheus.Counter
	lastPrice         *prometheus.GaugeVec
	compositeScore    *prometheus.GaugeVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "cycles_total",
			Help:      "Alert cycles by trigger and whether they ran or were skipped",
		}, []string{"trigger", "status"}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of executed alert cycles",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		instruments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "instruments_total",
			Help:      "Instrument evaluations by outcome",
		}, []string{"outcome"}),
		narrativeResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "narrative",
			Name:      "results_total",
			Help:      "Narratives by source",
		}, []string{"source"}),
		narrativeAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "narrative",
			Name:      "attempts_total",
			Help:      "Provider calls made for narratives",
		}),
		cooldownRejects: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "cooldown_rejections_total",
			Help:      "Manual triggers refused by the cooldown",
		}),
		lastPrice: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sentinel",
			Name:      "last_price",
			Help:      "Last observed price per symbol",
		}, []string{"symbol"}),
		compositeScore: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sentinel",
			Name:      "composite_score",
			Help:      "Last composite recommendation score per symbol",
		}, []string{"symbol"}),
	}
}

// ObserveCycle records an executed or skipped cycle.
func (r *Recorder) ObserveCycle(trigger string, skipped bool, d time.Duration) {
	if r == nil {
		return
	}
	if skipped {
		r.cycles.WithLabelValues(trigger, "skipped").Inc()
		return
	}
	r.cycles.WithLabelValues(trigger, "ran").Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// ObserveInstrument records one instrument outcome.
func (r *Recorder) ObserveInstrument(outcome string) {
	if r == nil {
		return
	}
	r.instruments.WithLabelValues(outcome).Inc()
}

// ObserveSignal records the latest price and composite score of a symbol.
func (r *Recorder) ObserveSignal(symbol string, price, score float64) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(symbol).Set(price)
	r.compositeScore.WithLabelValues(symbol).Set(score)
}

// ObserveNarrative records where a narrative came from and how many calls it took.
func (r *Recorder) ObserveNarrative(source string, attempts int) {
	if r == nil {
		return
	}
	r.narrativeResults.WithLabelValues(source).Inc()
	r.narrativeAttempts.Add(float64(attempts))
}

// ObserveCooldownReject records a refused manual trigger.
func (r *Recorder) ObserveCooldownReject() {
	if r == nil {
		return
	}
	r.cooldownRejects.Inc()
}
