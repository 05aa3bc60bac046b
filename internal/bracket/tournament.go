package bracket

import (
	"time"
)

type TournamentStatus string

const (
	TournamentCreated    TournamentStatus = "created"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentCompleted  TournamentStatus = "completed"
)

type Tournament struct {
	ID             int64            `db:"id"`
	InputQuestion  string           `db:"input_question"`
	Status         TournamentStatus `db:"status"`
	CurrentRound   int              `db:"current_round"`
	WinnerPromptID *int64           `db:"winner_prompt_id"`
	Winner         *string          `db:"winner"`
	CreatedAt      time.Time        `db:"created_at"`
	CompletedAt    *time.Time       `db:"completed_at"`
}

// Start moves a freshly created tournament into its first round.
func (t *Tournament) Start() error {
	if t.Status != TournamentCreated || t.CurrentRound != 0 {
		return ErrTournamentAlreadyStarted
	}
	t.Status = TournamentInProgress
	t.CurrentRound = 1
	return nil
}

// Advance opens the next round. Only valid while the bracket is running.
func (t *Tournament) Advance() error {
	if t.Status != TournamentInProgress {
		return ErrInvalidTournamentState
	}
	t.CurrentRound++
	return nil
}

func (t *Tournament) Complete(champion Contestant, at time.Time) error {
	if t.Status != TournamentInProgress {
		return ErrInvalidTournamentState
	}
	t.Status = TournamentCompleted
	t.WinnerPromptID = &champion.PromptID
	t.Winner = &champion.Text
	t.CompletedAt = &at
	return nil
}

func (t *Tournament) IsCompleted() bool {
	return t.Status == TournamentCompleted
}
