package bracket

import (
	"time"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchCompleted MatchStatus = "completed"
)

type Match struct {
	ID           int64 `db:"id"`
	TournamentID int64 `db:"tournament_id"`

	// Position in the bracket, match_order follows creation order within the round
	RoundNumber int `db:"round_number"`
	MatchOrder  int `db:"match_order"`

	Prompt1ID int64  `db:"prompt_1_id"`
	Prompt2ID int64  `db:"prompt_2_id"`
	Prompt1   string `db:"prompt_1"`
	Prompt2   string `db:"prompt_2"`

	Status   MatchStatus `db:"status"`
	WinnerID *int64      `db:"winner_id"`
	Winner   *string     `db:"winner"`

	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted
}

func (m *Match) IsWinner(promptID int64) bool {
	return m.IsCompleted() && m.WinnerID != nil && *m.WinnerID == promptID
}

// Resolve records the winner. A match can only be resolved once and only for one of its two prompts.
func (m *Match) Resolve(winnerID int64, at time.Time) error {
	if m.IsCompleted() {
		return ErrMatchAlreadyCompleted
	}

	var text string
	switch winnerID {
	case m.Prompt1ID:
		text = m.Prompt1
	case m.Prompt2ID:
		text = m.Prompt2
	default:
		return ErrInvalidWinner
	}

	m.Status = MatchCompleted
	m.WinnerID = &winnerID
	m.Winner = &text
	m.CompletedAt = &at
	return nil
}

func (m *Match) WinnerContestant() (Contestant, bool) {
	if !m.IsCompleted() || m.WinnerID == nil || m.Winner == nil {
		return Contestant{}, false
	}
	return Contestant{PromptID: *m.WinnerID, Text: *m.Winner}, true
}

// LoserID is only meaningful once the match is completed.
func (m *Match) LoserID() int64 {
	if m.IsWinner(m.Prompt1ID) {
		return m.Prompt2ID
	}
	return m.Prompt1ID
}
