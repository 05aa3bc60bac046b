package bracket

import "time"

type Prompt struct {
	ID           int64     `db:"id"`
	TournamentID int64     `db:"tournament_id"`
	Text         string    `db:"prompt_text"`
	Position     int       `db:"position"`
	CreatedAt    time.Time `db:"created_at"`
}

func (p Prompt) Contestant() Contestant {
	return Contestant{PromptID: p.ID, Text: p.Text}
}

// Contestant is a prompt as it enters a round: its stable id plus the text shown to voters.
type Contestant struct {
	PromptID int64
	Text     string
}

// Bye records a prompt that advanced out of a round without playing.
type Bye struct {
	TournamentID int64  `db:"tournament_id"`
	RoundNumber  int    `db:"round_number"`
	PromptID     int64  `db:"prompt_id"`
	ByeOrder     int    `db:"bye_order"`
	Text         string `db:"prompt_text"`
}

func (b Bye) Contestant() Contestant {
	return Contestant{PromptID: b.PromptID, Text: b.Text}
}

type PromptStats struct {
	TournamentID int64  `db:"tournament_id"`
	PromptID     int64  `db:"prompt_id"`
	Text         string `db:"prompt_text"`
	WinCount     int    `db:"win_count"`
	LossCount    int    `db:"loss_count"`
}

func Contestants(prompts []Prompt) []Contestant {
	out := make([]Contestant, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, p.Contestant())
	}
	return out
}
