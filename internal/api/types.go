// Package api holds the JSON shapes of the HTTP interface, shared by the handlers and the Go client.
package api

import (
	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
)

type CreateTournamentRequest struct {
	InputQuestion string   `json:"input_question"`
	CustomPrompts []string `json:"custom_prompts"`
	TotalPrompts  *int     `json:"total_prompts,omitempty"`
}

type CreateTournamentResponse struct {
	TournamentID  int64    `json:"tournament_id"`
	InputQuestion string   `json:"input_question"`
	Prompts       []string `json:"prompts"`
}

type Prompt struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type Match struct {
	MatchID     int64   `json:"match_id"`
	RoundNumber int     `json:"round_number"`
	MatchOrder  int     `json:"match_order"`
	Prompt1ID   int64   `json:"prompt_1_id"`
	Prompt2ID   int64   `json:"prompt_2_id"`
	Prompt1     string  `json:"prompt_1"`
	Prompt2     string  `json:"prompt_2"`
	Status      string  `json:"status"`
	Winner      *string `json:"winner"`
	WinnerID    *int64  `json:"winner_id"`
}

type Progress struct {
	TotalMatches         int     `json:"total_matches"`
	CompletedMatches     int     `json:"completed_matches"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type TournamentStatus struct {
	TournamentID  int64            `json:"tournament_id"`
	InputQuestion string           `json:"input_question"`
	Status        string           `json:"status"`
	CurrentRound  int              `json:"current_round"`
	TotalPrompts  int              `json:"total_prompts"`
	TotalRounds   int              `json:"total_rounds"`
	Prompts       []Prompt         `json:"prompts"`
	Progress      Progress         `json:"progress"`
	Rounds        map[int][]Match  `json:"rounds"`
	Byes          map[int][]string `json:"byes"`
	Winner        *string          `json:"winner"`
	WinnerID      *int64           `json:"winner_id"`
}

type StartBracketResponse struct {
	Message       string   `json:"message"`
	TournamentID  int64    `json:"tournament_id"`
	Round1Matches []Match  `json:"round_1_matches"`
	TotalMatches  int      `json:"total_matches"`
	Byes          []string `json:"byes"`
}

type SubmitResultRequest struct {
	WinnerID *int64 `json:"winner_id"`
}

type SubmitResultResponse struct {
	Message             string   `json:"message"`
	MatchID             int64    `json:"match_id"`
	Winner              string   `json:"winner"`
	RoundCompleted      bool     `json:"round_completed"`
	NextRound           *int     `json:"next_round,omitempty"`
	NextRoundMatches    []Match  `json:"next_round_matches,omitempty"`
	ByePrompts          []string `json:"bye_prompts,omitempty"`
	TournamentCompleted bool     `json:"tournament_completed,omitempty"`
	TournamentWinner    *string  `json:"tournament_winner,omitempty"`
}

type MatchesResponse struct {
	TournamentID int64   `json:"tournament_id"`
	Matches      []Match `json:"matches"`
	TotalMatches int     `json:"total_matches"`
}

type Standing struct {
	PromptID int64  `json:"prompt_id"`
	Text     string `json:"text"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

type LeaderboardResponse struct {
	TournamentID int64      `json:"tournament_id"`
	Standings    []Standing `json:"standings"`
}

type GeneratorStatus struct {
	Available bool   `json:"available"`
	Provider  string `json:"provider,omitempty"`
}

type TestPromptRequest struct {
	Prompt      string   `json:"prompt"`
	Model       *string  `json:"model,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type TestPromptResponse struct {
	Prompt      string  `json:"prompt"`
	Response    string  `json:"response"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Usage       Usage   `json:"usage"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewMatch(m bracket.Match) Match {
	return Match{
		MatchID:     m.ID,
		RoundNumber: m.RoundNumber,
		MatchOrder:  m.MatchOrder,
		Prompt1ID:   m.Prompt1ID,
		Prompt2ID:   m.Prompt2ID,
		Prompt1:     m.Prompt1,
		Prompt2:     m.Prompt2,
		Status:      string(m.Status),
		Winner:      m.Winner,
		WinnerID:    m.WinnerID,
	}
}

// NewMatches never returns nil so empty lists encode as [].
func NewMatches(matches []bracket.Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, NewMatch(m))
	}
	return out
}

func NewPrompts(prompts []bracket.Prompt) []Prompt {
	out := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, Prompt{ID: p.ID, Text: p.Text})
	}
	return out
}

func NewStandings(stats []bracket.PromptStats) []Standing {
	out := make([]Standing, 0, len(stats))
	for _, s := range stats {
		out = append(out, Standing{PromptID: s.PromptID, Text: s.Text, Wins: s.WinCount, Losses: s.LossCount})
	}
	return out
}

func (s TournamentStatus) IsCompleted() bool {
	return s.Status == string(bracket.TournamentCompleted)
}
