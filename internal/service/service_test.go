package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/config"
	"github.com/AdamBeresnev/prompt-tournament/internal/db"
	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/llm"
	"github.com/AdamBeresnev/prompt-tournament/internal/metrics"
	"github.com/AdamBeresnev/prompt-tournament/internal/store"
	"github.com/AdamBeresnev/prompt-tournament/internal/utils"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// setupTestDB creates a file backed SQLite database so concurrent transactions behave like they do
// in production, and applies the embedded migrations.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitDB(config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "tournaments.db"),
	})
	require.NoError(t, err, "Failed to open test DB")
	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type stubProvider struct {
	mu        sync.Mutex
	available bool
	replies   []string
	err       error
	requests  []llm.Request
}

func (s *stubProvider) Name() string      { return "stub" }
func (s *stubProvider) IsAvailable() bool { return s.available }

// Complete returns the queued replies in order and keeps repeating the last one.
func (s *stubProvider) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	reply := ""
	if len(s.replies) > 0 {
		reply = s.replies[0]
		if len(s.replies) > 1 {
			s.replies = s.replies[1:]
		}
	}
	return &llm.Completion{Text: reply, Model: req.Model, InputTokens: 9, OutputTokens: 4}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	provider    *stubProvider
	publisher   *recordingPublisher
	metrics     *metrics.Metrics
	prompts     *PromptService
	tournaments *TournamentService
	matches     *MatchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	env := &testEnv{
		db:        database,
		store:     store.NewTournamentStore(database),
		provider:  &stubProvider{},
		publisher: &recordingPublisher{},
		metrics:   metrics.New(),
	}

	opts := []Option{
		WithLocks(NewTournamentLocks()),
		WithPublisher(env.publisher),
		WithMetrics(env.metrics),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
	}
	env.prompts = NewPromptService(env.provider, "claude-haiku-4-5-20251001", config.Default().Tournament, opts...)
	env.tournaments = NewTournamentService(database, env.store, env.prompts, opts...)
	env.matches = NewMatchService(database, env.store, opts...)
	return env
}

// createTournament stores a tournament whose pool is exactly texts.
func (e *testEnv) createTournament(t *testing.T, texts ...string) *TournamentData {
	t.Helper()
	data, err := e.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		InputQuestion: "What makes a good prompt?",
		CustomPrompts: texts,
		TotalPrompts:  utils.Ptr(len(texts)),
	})
	require.NoError(t, err)
	return data
}

// insertTournament bypasses pool validation, for pools the service would refuse to create.
func (e *testEnv) insertTournament(t *testing.T, texts ...string) int64 {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	tx, err := e.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	tournament := &bracket.Tournament{InputQuestion: "Q", Status: bracket.TournamentCreated, CreatedAt: now}
	require.NoError(t, e.store.CreateTournament(ctx, tx, tournament))
	prompts := make([]bracket.Prompt, len(texts))
	for i, text := range texts {
		prompts[i] = bracket.Prompt{TournamentID: tournament.ID, Text: text, Position: i + 1, CreatedAt: now}
	}
	require.NoError(t, e.store.CreatePrompts(ctx, tx, prompts))
	require.NoError(t, tx.Commit())
	return tournament.ID
}

// promptID looks up the id of a prompt text in a created tournament.
func promptID(t *testing.T, data *TournamentData, text string) int64 {
	t.Helper()
	for _, p := range data.Prompts {
		if p.Text == text {
			return p.ID
		}
	}
	t.Fatalf("prompt %q not in tournament", text)
	return 0
}

// counterValue reads a counter from the registry. labels are name/value pairs.
func counterValue(t *testing.T, m *metrics.Metrics, name string, labels ...string) float64 {
	t.Helper()
	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, metric := range family.GetMetric() {
			for i := 0; i+1 < len(labels); i += 2 {
				found := false
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == labels[i] && lp.GetValue() == labels[i+1] {
						found = true
					}
				}
				if !found {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
