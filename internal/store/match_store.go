package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/jmoiron/sqlx"
)

const selectMatches = `SELECT m.id, m.tournament_id, m.round_number, m.match_order,
		m.prompt_1_id, m.prompt_2_id, p1.prompt_text AS prompt_1, p2.prompt_text AS prompt_2,
		m.status, m.winner_id, m.winner, m.created_at, m.completed_at
	FROM matches m
	JOIN prompts p1 ON p1.id = m.prompt_1_id
	JOIN prompts p2 ON p2.id = m.prompt_2_id`

// CreateMatches inserts the matches in slice order and fills in their ids.
func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for i := range matches {
		m := &matches[i]
		err := tx.QueryRowxContext(ctx, `INSERT INTO matches (tournament_id, round_number, match_order, prompt_1_id, prompt_2_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			m.TournamentID, m.RoundNumber, m.MatchOrder, m.Prompt1ID, m.Prompt2ID, m.Status, m.CreatedAt,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("failed to insert match %d of round %d: %w", m.MatchOrder, m.RoundNumber, err)
		}
	}
	return nil
}

func (s *TournamentStore) GetMatch(ctx context.Context, id int64) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, selectMatches+" WHERE m.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bracket.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id int64) (*bracket.Match, error) {
	var match bracket.Match
	err := tx.GetContext(ctx, &match, selectMatches+" WHERE m.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bracket.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID int64) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, selectMatches+" WHERE m.tournament_id = $1 ORDER BY m.round_number ASC, m.match_order ASC", tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatchesByRound(ctx context.Context, tournamentID int64, round int) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, selectMatches+" WHERE m.tournament_id = $1 AND m.round_number = $2 ORDER BY m.match_order ASC", tournamentID, round)
	return matches, err
}

func (s *TournamentStore) GetRoundMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID int64, round int) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := tx.SelectContext(ctx, &matches, selectMatches+" WHERE m.tournament_id = $1 AND m.round_number = $2 ORDER BY m.match_order ASC", tournamentID, round)
	return matches, err
}

func (s *TournamentStore) CountMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID int64) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM matches WHERE tournament_id = $1", tournamentID)
	return count, err
}

// CompleteMatch persists a resolved match. The update only applies to a pending row, so a result
// that lost a race is reported as already completed.
func (s *TournamentStore) CompleteMatch(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	res, err := tx.NamedExecContext(ctx, `UPDATE matches
		SET status = :status, winner_id = :winner_id, winner = :winner, completed_at = :completed_at
		WHERE id = :id AND status = 'pending'`, match)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bracket.ErrMatchAlreadyCompleted
	}
	return nil
}
