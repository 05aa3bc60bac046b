package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	err := tx.QueryRowxContext(ctx, `INSERT INTO tournaments (input_question, status, current_round, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		tournament.InputQuestion, tournament.Status, tournament.CurrentRound, tournament.CreatedAt,
	).Scan(&tournament.ID)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (s *TournamentStore) GetTournament(ctx context.Context, id int64) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bracket.ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

// GetTournamentForUpdate reads the tournament inside tx. On Postgres the row stays locked until the
// transaction ends; SQLite transactions already hold the database write lock.
func (s *TournamentStore) GetTournamentForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*bracket.Tournament, error) {
	query := "SELECT * FROM tournaments WHERE id = $1"
	if tx.DriverName() == "pgx" {
		query += " FOR UPDATE"
	}

	var tournament bracket.Tournament
	err := tx.GetContext(ctx, &tournament, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bracket.ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) UpdateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE tournaments
		SET status = :status, current_round = :current_round, winner_prompt_id = :winner_prompt_id,
			winner = :winner, completed_at = :completed_at
		WHERE id = :id`, tournament)
	if err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	return nil
}

func (s *TournamentStore) CreateByes(ctx context.Context, tx *sqlx.Tx, byes []bracket.Bye) error {
	if len(byes) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO byes (tournament_id, round_number, prompt_id, bye_order)
		VALUES (:tournament_id, :round_number, :prompt_id, :bye_order)`, byes)
	if err != nil {
		return fmt.Errorf("failed to insert byes: %w", err)
	}
	return nil
}

const selectByes = `SELECT b.tournament_id, b.round_number, b.prompt_id, b.bye_order, p.prompt_text
	FROM byes b
	JOIN prompts p ON p.id = b.prompt_id`

func (s *TournamentStore) GetByes(ctx context.Context, tournamentID int64) ([]bracket.Bye, error) {
	var byes []bracket.Bye
	err := s.db.SelectContext(ctx, &byes, selectByes+" WHERE b.tournament_id = $1 ORDER BY b.round_number ASC, b.bye_order ASC", tournamentID)
	return byes, err
}

func (s *TournamentStore) GetRoundByesTx(ctx context.Context, tx *sqlx.Tx, tournamentID int64, round int) ([]bracket.Bye, error) {
	var byes []bracket.Bye
	err := tx.SelectContext(ctx, &byes, selectByes+" WHERE b.tournament_id = $1 AND b.round_number = $2 ORDER BY b.bye_order ASC", tournamentID, round)
	return byes, err
}
