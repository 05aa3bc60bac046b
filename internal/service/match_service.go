package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/store"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

type MatchService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	deps
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, opts ...Option) *MatchService {
	return &MatchService{db: db, store: store, deps: newDeps(opts)}
}

// ResultOutcome is what recording one match result did to the bracket.
type ResultOutcome struct {
	Match          *bracket.Match
	RoundCompleted bool

	// Set when the round completion opened another round.
	NextRound   int
	NextMatches []bracket.Match
	NextByes    []bracket.Bye

	// Set when the round completion crowned the champion.
	TournamentCompleted bool
	Champion            *bracket.Contestant
}

// SubmitResult records winnerID as the winner of the match and advances the bracket when that
// completes the round. Results for one tournament are applied one at a time.
func (s *MatchService) SubmitResult(ctx context.Context, matchID, winnerID int64) (outcome *ResultOutcome, err error) {
	ctx, span := s.tracer.Start(ctx, "MatchService.SubmitResult")
	span.SetAttributes(attribute.Int64("match.id", matchID), attribute.Int64("match.winner_id", winnerID))
	defer func() { endSpan(span, err) }()

	// Only used to find which tournament to lock, everything is re-read under the lock.
	found, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("tournament.id", found.TournamentID))

	unlock := s.locks.Lock(found.TournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentForUpdate(ctx, tx, found.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := match.Resolve(winnerID, now); err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentInProgress || match.RoundNumber != tournament.CurrentRound {
		return nil, fmt.Errorf("%w: match %d is in round %d but tournament %d is %s in round %d",
			bracket.ErrInvalidTournamentState, match.ID, match.RoundNumber, tournament.ID, tournament.Status, tournament.CurrentRound)
	}

	if err := s.store.CompleteMatch(ctx, tx, match); err != nil {
		return nil, err
	}
	if err := s.store.RecordResult(ctx, tx, tournament.ID, winnerID, match.LoserID()); err != nil {
		return nil, err
	}

	roundMatches, err := s.store.GetRoundMatchesTx(ctx, tx, tournament.ID, match.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get round matches: %w", err)
	}
	roundByes, err := s.store.GetRoundByesTx(ctx, tx, tournament.ID, match.RoundNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get round byes: %w", err)
	}

	advance, err := bracket.Advance(match.RoundNumber, roundMatches, roundByes)
	if err != nil {
		return nil, err
	}

	outcome = &ResultOutcome{Match: match, RoundCompleted: advance.RoundCompleted}
	switch {
	case advance.Champion != nil:
		if err := tournament.Complete(*advance.Champion, now); err != nil {
			return nil, err
		}
		outcome.TournamentCompleted = true
		outcome.Champion = advance.Champion
	case advance.Next != nil:
		if err := tournament.Advance(); err != nil {
			return nil, err
		}
		matches, byes, err := createRound(ctx, s.store, tx, tournament.ID, tournament.CurrentRound, *advance.Next, now)
		if err != nil {
			return nil, err
		}
		outcome.NextRound = tournament.CurrentRound
		outcome.NextMatches = matches
		outcome.NextByes = byes
	}

	if advance.RoundCompleted {
		if err := s.store.UpdateTournament(ctx, tx, tournament); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.record(ctx, tournament, match, outcome)
	return outcome, nil
}

func (s *MatchService) record(ctx context.Context, tournament *bracket.Tournament, match *bracket.Match, outcome *ResultOutcome) {
	s.metrics.MatchCompleted()

	completed := events.New(events.TopicMatchCompleted, tournament.ID)
	completed.Round = match.RoundNumber
	completed.MatchID = match.ID
	completed.Winner = *match.Winner
	evts := []events.Event{completed}

	if outcome.RoundCompleted {
		s.metrics.RoundCompleted()
	}
	switch {
	case outcome.TournamentCompleted:
		s.metrics.TournamentCompleted()
		s.logger.InfoContext(ctx, "Tournament completed", "tournament_id", tournament.ID, "winner_prompt_id", outcome.Champion.PromptID)

		done := events.New(events.TopicTournamentCompleted, tournament.ID)
		done.Round = match.RoundNumber
		done.Winner = outcome.Champion.Text
		evts = append(evts, done)
	case outcome.NextRound > 0:
		s.logger.InfoContext(ctx, "Round started", "tournament_id", tournament.ID, "round", outcome.NextRound,
			"matches", len(outcome.NextMatches), "byes", len(outcome.NextByes))

		next := events.New(events.TopicRoundStarted, tournament.ID)
		next.Round = outcome.NextRound
		evts = append(evts, next)
	}

	s.publish(ctx, evts...)
}
