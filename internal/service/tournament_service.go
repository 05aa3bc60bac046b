package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/store"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

type TournamentService struct {
	db      *sqlx.DB
	store   *store.TournamentStore
	prompts *PromptService
	deps
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, prompts *PromptService, opts ...Option) *TournamentService {
	return &TournamentService{db: db, store: store, prompts: prompts, deps: newDeps(opts)}
}

type CreateTournamentInput struct {
	InputQuestion string
	CustomPrompts []string
	TotalPrompts  *int
}

type TournamentData struct {
	Tournament *bracket.Tournament
	Prompts    []bracket.Prompt
}

// CreateTournament assembles the prompt pool and stores the tournament in the created state.
// Generation happens before the transaction opens.
func (s *TournamentService) CreateTournament(ctx context.Context, in CreateTournamentInput) (data *TournamentData, err error) {
	ctx, span := s.tracer.Start(ctx, "TournamentService.CreateTournament")
	defer func() { endSpan(span, err) }()

	pool, err := s.prompts.BuildPool(ctx, in.InputQuestion, in.CustomPrompts, in.TotalPrompts)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	tournament := &bracket.Tournament{
		InputQuestion: strings.TrimSpace(in.InputQuestion),
		Status:        bracket.TournamentCreated,
		CreatedAt:     now,
	}
	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, err
	}

	prompts := make([]bracket.Prompt, 0, len(pool))
	for i, text := range pool {
		prompts = append(prompts, bracket.Prompt{
			TournamentID: tournament.ID,
			Text:         text,
			Position:     i + 1,
			CreatedAt:    now,
		})
	}
	if err := s.store.CreatePrompts(ctx, tx, prompts); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("tournament.id", tournament.ID))
	s.logger.InfoContext(ctx, "Tournament created", "tournament_id", tournament.ID, "prompts", len(prompts))
	s.metrics.TournamentCreated()
	s.publish(ctx, events.New(events.TopicTournamentCreated, tournament.ID))

	return &TournamentData{Tournament: tournament, Prompts: prompts}, nil
}

type BracketStart struct {
	Tournament *bracket.Tournament
	Matches    []bracket.Match
	Byes       []bracket.Bye
}

// StartBracket builds round 1 from the prompt pool in position order.
func (s *TournamentService) StartBracket(ctx context.Context, tournamentID int64) (result *BracketStart, err error) {
	ctx, span := s.tracer.Start(ctx, "TournamentService.StartBracket")
	span.SetAttributes(attribute.Int64("tournament.id", tournamentID))
	defer func() { endSpan(span, err) }()

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentForUpdate(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.CountMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	if existing > 0 {
		return nil, bracket.ErrTournamentAlreadyStarted
	}
	if err := tournament.Start(); err != nil {
		return nil, err
	}

	prompts, err := s.store.GetPromptsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts: %w", err)
	}
	if len(prompts) < 2 {
		return nil, bracket.ErrInsufficientPrompts
	}

	plan, err := bracket.PlanRound(bracket.Contestants(prompts))
	if err != nil {
		return nil, err
	}

	matches, byes, err := createRound(ctx, s.store, tx, tournamentID, tournament.CurrentRound, plan, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateTournament(ctx, tx, tournament); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Bracket started", "tournament_id", tournamentID, "matches", len(matches), "byes", len(byes))
	s.metrics.BracketStarted()

	started := events.New(events.TopicBracketStarted, tournamentID)
	started.Round = tournament.CurrentRound
	round := events.New(events.TopicRoundStarted, tournamentID)
	round.Round = tournament.CurrentRound
	s.publish(ctx, started, round)

	return &BracketStart{Tournament: tournament, Matches: matches, Byes: byes}, nil
}

// TournamentState is everything the status view shows about one tournament.
type TournamentState struct {
	Tournament *bracket.Tournament
	Prompts    []bracket.Prompt
	Rounds     map[int][]bracket.Match
	Byes       map[int][]bracket.Bye
	Progress   bracket.Progress
}

func (s *TournamentService) GetTournamentState(ctx context.Context, tournamentID int64) (state *TournamentState, err error) {
	ctx, span := s.tracer.Start(ctx, "TournamentService.GetTournamentState")
	defer func() { endSpan(span, err) }()

	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	prompts, err := s.store.GetPrompts(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts: %w", err)
	}

	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	byes, err := s.store.GetByes(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get byes: %w", err)
	}

	rounds, byeRounds := groupByRound(tournament.CurrentRound, matches, byes)
	return &TournamentState{
		Tournament: tournament,
		Prompts:    prompts,
		Rounds:     rounds,
		Byes:       byeRounds,
		Progress:   bracket.ComputeProgress(matches),
	}, nil
}

// groupByRound keys matches and byes by round. Every round up to current gets an entry in both
// maps, so a round without byes shows as empty rather than missing.
func groupByRound(current int, matches []bracket.Match, byes []bracket.Bye) (map[int][]bracket.Match, map[int][]bracket.Bye) {
	rounds := make(map[int][]bracket.Match, current)
	byeRounds := make(map[int][]bracket.Bye, current)
	for r := 1; r <= current; r++ {
		rounds[r] = []bracket.Match{}
		byeRounds[r] = []bracket.Bye{}
	}

	for _, m := range matches {
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}
	for _, b := range byes {
		byeRounds[b.RoundNumber] = append(byeRounds[b.RoundNumber], b)
	}
	return rounds, byeRounds
}

// ListMatches returns the tournament's matches, optionally limited to one round.
func (s *TournamentService) ListMatches(ctx context.Context, tournamentID int64, round *int) ([]bracket.Match, error) {
	if round != nil && *round < 1 {
		return nil, fmt.Errorf("%w: round must be a positive integer", bracket.ErrInvalidInput)
	}

	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}

	if round == nil {
		return s.store.GetMatches(ctx, tournamentID)
	}
	return s.store.GetMatchesByRound(ctx, tournamentID, *round)
}

func (s *TournamentService) Leaderboard(ctx context.Context, tournamentID int64) ([]bracket.PromptStats, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.store.GetLeaderboard(ctx, tournamentID)
}

// ListPrompts returns the most recent prompts across tournaments.
func (s *TournamentService) ListPrompts(ctx context.Context, limit int) ([]bracket.Prompt, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListPrompts(ctx, limit)
}

// Exists reports whether the tournament is stored.
func (s *TournamentService) Exists(ctx context.Context, tournamentID int64) error {
	_, err := s.store.GetTournament(ctx, tournamentID)
	return err
}
