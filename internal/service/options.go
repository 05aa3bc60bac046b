package service

import (
	"context"
	"log/slog"

	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/AdamBeresnev/prompt-tournament/internal/service"

type deps struct {
	locks     *TournamentLocks
	publisher events.Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

type Option func(*deps)

// WithLocks shares one lock table between services. Services built without it get their own.
func WithLocks(locks *TournamentLocks) Option {
	return func(d *deps) { d.locks = locks }
}

func WithPublisher(p events.Publisher) Option {
	return func(d *deps) { d.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(d *deps) { d.tracer = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *deps) { d.logger = l }
}

func newDeps(opts []Option) deps {
	d := deps{}
	for _, opt := range opts {
		opt(&d)
	}
	if d.locks == nil {
		d.locks = NewTournamentLocks()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// publish runs after commit. The transition already happened, so a failed publish is only logged.
func (d deps) publish(ctx context.Context, evts ...events.Event) {
	if d.publisher == nil || len(evts) == 0 {
		return
	}
	if err := d.publisher.Publish(ctx, evts...); err != nil {
		d.logger.Warn("Failed to publish events", "error", err, "count", len(evts))
	}
}
