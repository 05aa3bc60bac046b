package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/jmoiron/sqlx"
)

// CreatePrompts inserts the pool in position order and fills in the prompt ids.
func (s *TournamentStore) CreatePrompts(ctx context.Context, tx *sqlx.Tx, prompts []bracket.Prompt) error {
	for i := range prompts {
		p := &prompts[i]
		err := tx.QueryRowxContext(ctx, `INSERT INTO prompts (tournament_id, prompt_text, position, created_at)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			p.TournamentID, p.Text, p.Position, p.CreatedAt,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to insert prompt %d: %w", p.Position, err)
		}
	}
	return nil
}

func (s *TournamentStore) GetPrompts(ctx context.Context, tournamentID int64) ([]bracket.Prompt, error) {
	var prompts []bracket.Prompt
	err := s.db.SelectContext(ctx, &prompts, "SELECT * FROM prompts WHERE tournament_id = $1 ORDER BY position ASC", tournamentID)
	return prompts, err
}

func (s *TournamentStore) GetPromptsTx(ctx context.Context, tx *sqlx.Tx, tournamentID int64) ([]bracket.Prompt, error) {
	var prompts []bracket.Prompt
	err := tx.SelectContext(ctx, &prompts, "SELECT * FROM prompts WHERE tournament_id = $1 ORDER BY position ASC", tournamentID)
	return prompts, err
}

// ListPrompts returns prompts across all tournaments, newest first.
func (s *TournamentStore) ListPrompts(ctx context.Context, limit int) ([]bracket.Prompt, error) {
	var prompts []bracket.Prompt
	err := s.db.SelectContext(ctx, &prompts, "SELECT * FROM prompts ORDER BY id DESC LIMIT $1", limit)
	return prompts, err
}

func (s *TournamentStore) RecordResult(ctx context.Context, tx *sqlx.Tx, tournamentID, winnerID, loserID int64) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO prompt_stats (tournament_id, prompt_id, win_count, loss_count)
		VALUES ($1, $2, 1, 0)
		ON CONFLICT (tournament_id, prompt_id) DO UPDATE SET win_count = prompt_stats.win_count + 1`,
		tournamentID, winnerID)
	if err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO prompt_stats (tournament_id, prompt_id, win_count, loss_count)
		VALUES ($1, $2, 0, 1)
		ON CONFLICT (tournament_id, prompt_id) DO UPDATE SET loss_count = prompt_stats.loss_count + 1`,
		tournamentID, loserID)
	if err != nil {
		return fmt.Errorf("failed to record loss: %w", err)
	}
	return nil
}

// GetLeaderboard lists every prompt of the tournament, including ones that have not played yet.
func (s *TournamentStore) GetLeaderboard(ctx context.Context, tournamentID int64) ([]bracket.PromptStats, error) {
	var stats []bracket.PromptStats
	err := s.db.SelectContext(ctx, &stats, `SELECT p.tournament_id, p.id AS prompt_id, p.prompt_text,
			COALESCE(s.win_count, 0) AS win_count, COALESCE(s.loss_count, 0) AS loss_count
		FROM prompts p
		LEFT JOIN prompt_stats s ON s.tournament_id = p.tournament_id AND s.prompt_id = p.id
		WHERE p.tournament_id = $1
		ORDER BY win_count DESC, loss_count ASC, p.id ASC`, tournamentID)
	return stats, err
}
