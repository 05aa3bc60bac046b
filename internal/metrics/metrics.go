package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prompt_tournament"

// Generation outcomes for the prompt pool filler.
const (
	GenerationGenerated = "generated"
	GenerationFallback  = "fallback"
	GenerationFailed    = "failed"
)

// Metrics is safe to use as a nil pointer, every recorder is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	tournamentsCreated   prometheus.Counter
	bracketsStarted      prometheus.Counter
	matchesCompleted     prometheus.Counter
	roundsCompleted      prometheus.Counter
	tournamentsCompleted prometheus.Counter
	promptGeneration     *prometheus.CounterVec
	rateLimited          prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		tournamentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tournaments_created_total",
			Help: "Tournaments created.",
		}),
		bracketsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "brackets_started_total",
			Help: "Tournament brackets started.",
		}),
		matchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "matches_completed_total",
			Help: "Match results recorded.",
		}),
		roundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rounds_completed_total",
			Help: "Rounds whose last match was decided.",
		}),
		tournamentsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tournaments_completed_total",
			Help: "Tournaments that crowned a winner.",
		}),
		promptGeneration: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "prompt_generation_total",
			Help: "Prompt generation attempts by outcome.",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}

	registry.MustRegister(
		m.tournamentsCreated,
		m.bracketsStarted,
		m.matchesCompleted,
		m.roundsCompleted,
		m.tournamentsCompleted,
		m.promptGeneration,
		m.rateLimited,
	)
	return m
}

// Gatherer exposes the registry for scraping and tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TournamentCreated() {
	if m != nil {
		m.tournamentsCreated.Inc()
	}
}

func (m *Metrics) BracketStarted() {
	if m != nil {
		m.bracketsStarted.Inc()
	}
}

func (m *Metrics) MatchCompleted() {
	if m != nil {
		m.matchesCompleted.Inc()
	}
}

func (m *Metrics) RoundCompleted() {
	if m != nil {
		m.roundsCompleted.Inc()
	}
}

func (m *Metrics) TournamentCompleted() {
	if m != nil {
		m.tournamentsCompleted.Inc()
	}
}

func (m *Metrics) PromptGeneration(outcome string) {
	if m != nil {
		m.promptGeneration.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RateLimited() {
	if m != nil {
		m.rateLimited.Inc()
	}
}
