package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/config"
	"github.com/AdamBeresnev/prompt-tournament/internal/db"
	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/llm"
	"github.com/AdamBeresnev/prompt-tournament/internal/metrics"
	"github.com/AdamBeresnev/prompt-tournament/internal/middleware"
	"github.com/AdamBeresnev/prompt-tournament/internal/service"
	"github.com/AdamBeresnev/prompt-tournament/internal/store"
	"github.com/alexandrevicenzi/go-sse"
	"github.com/jmoiron/sqlx"
)

const shutdownTimeout = 10 * time.Second

type application struct {
	cfg    *config.Config
	logger *slog.Logger

	db          *sqlx.DB
	bus         *events.Bus
	sse         *sse.Server
	metrics     *metrics.Metrics
	limiter     *middleware.IPRateLimiter
	tournaments *service.TournamentService
	matches     *service.MatchService
	prompts     *service.PromptService

	// streams is cancelled on shutdown to end open event streams.
	streams      context.Context
	closeStreams context.CancelFunc
}

func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	database, err := db.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	bus := events.NewBus(logger)
	provider := llm.NewAnthropicProvider(cfg.LLM)
	opts := []service.Option{
		service.WithLocks(service.NewTournamentLocks()),
		service.WithPublisher(bus),
		service.WithMetrics(m),
		service.WithLogger(logger),
	}
	prompts := service.NewPromptService(provider, cfg.LLM.GenerationModel, cfg.Tournament, opts...)
	tournamentStore := store.NewTournamentStore(database)

	app := &application{
		cfg:         cfg,
		logger:      logger,
		db:          database,
		bus:         bus,
		metrics:     m,
		prompts:     prompts,
		tournaments: service.NewTournamentService(database, tournamentStore, prompts, opts...),
		matches:     service.NewMatchService(database, tournamentStore, opts...),
	}
	if cfg.Server.RateLimitRPS > 0 {
		app.limiter = middleware.NewIPRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}
	app.sse = newSSEServer(logger)
	app.streams, app.closeStreams = context.WithCancel(context.Background())

	if !provider.IsAvailable() {
		logger.Warn("ANTHROPIC_API_KEY is not set, prompt generation and previews are disabled")
	}
	return app, nil
}

func newSSEServer(logger *slog.Logger) *sse.Server {
	return sse.NewServer(&sse.Options{
		Logger: slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
		Headers: map[string]string{
			"X-Accel-Buffering": "no",
		},
		ChannelNameFunc: tournamentChannel,
	})
}

// Serve runs the HTTP server and the event relay until ctx is done or SIGINT/SIGTERM arrives.
func (a *application) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return a.serve(ctx, ln)
}

func (a *application) serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relayDone := make(chan error, 1)
	go func() {
		relayDone <- events.NewRelay(a.bus, a.sse, a.logger).Run(ctx)
	}()

	srv := &http.Server{
		Handler:      a.routes(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	// Event streams never go idle on their own, so Shutdown would wait on them forever.
	srv.RegisterOnShutdown(a.closeStreams)

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", "addr", ln.Addr().String(), "base_path", a.cfg.Server.BasePath, "db_driver", a.cfg.Database.Driver)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// The SSE server must outlive every stream handler and the relay.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	stop()
	if err := a.bus.Close(); err != nil {
		a.logger.Warn("Failed to close event bus", "error", err)
	}
	relayErr := <-relayDone
	a.sse.Shutdown()
	return relayErr
}

func (a *application) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}
