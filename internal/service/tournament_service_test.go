package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	data, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		InputQuestion: "  How do magnets work?  ",
		CustomPrompts: []string{"Explain magnets", "explain MAGNETS ", "", "Magnets for kids"},
		TotalPrompts:  utils.Ptr(2),
	})
	require.NoError(t, err)

	assert.NotZero(t, data.Tournament.ID)
	assert.Equal(t, "How do magnets work?", data.Tournament.InputQuestion)
	assert.Equal(t, bracket.TournamentCreated, data.Tournament.Status)
	require.Len(t, data.Prompts, 2)
	assert.Equal(t, "Explain magnets", data.Prompts[0].Text)
	assert.Equal(t, "Magnets for kids", data.Prompts[1].Text)

	stored, err := env.store.GetPrompts(ctx, data.Tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, data.Prompts[0].ID, stored[0].ID)

	assert.Equal(t, []string{events.TopicTournamentCreated}, env.publisher.types())
	assert.Equal(t, 1.0, counterValue(t, env.metrics, "prompt_tournament_tournaments_created_total"))
}

func TestCreateTournament_NothingStoredOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		InputQuestion: "Q",
		CustomPrompts: []string{"only one"},
	})
	assert.ErrorIs(t, err, bracket.ErrUpstreamGenerationUnavailable)

	prompts, err := env.tournaments.ListPrompts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, prompts)
	assert.Empty(t, env.publisher.types())
}

func TestStartBracket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := env.createTournament(t, "A", "B", "C", "D", "E")

	started, err := env.tournaments.StartBracket(ctx, data.Tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, bracket.TournamentInProgress, started.Tournament.Status)
	assert.Equal(t, 1, started.Tournament.CurrentRound)
	require.Len(t, started.Matches, 2)
	assert.Equal(t, "A", started.Matches[0].Prompt1)
	assert.Equal(t, "B", started.Matches[0].Prompt2)
	assert.Equal(t, "C", started.Matches[1].Prompt1)
	assert.Equal(t, "D", started.Matches[1].Prompt2)
	require.Len(t, started.Byes, 1)
	assert.Equal(t, "E", started.Byes[0].Text)

	assert.Equal(t, []string{events.TopicTournamentCreated, events.TopicBracketStarted, events.TopicRoundStarted}, env.publisher.types())
}

func TestStartBracket_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tournaments.StartBracket(ctx, 999)
	assert.ErrorIs(t, err, bracket.ErrTournamentNotFound)

	data := env.createTournament(t, "A", "B")
	_, err = env.tournaments.StartBracket(ctx, data.Tournament.ID)
	require.NoError(t, err)
	_, err = env.tournaments.StartBracket(ctx, data.Tournament.ID)
	assert.ErrorIs(t, err, bracket.ErrTournamentAlreadyStarted)

	lonely := env.insertTournament(t, "solo")
	_, err = env.tournaments.StartBracket(ctx, lonely)
	assert.ErrorIs(t, err, bracket.ErrInsufficientPrompts)

	// the failed start left nothing behind
	state, err := env.tournaments.GetTournamentState(ctx, lonely)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCreated, state.Tournament.Status)
	assert.Equal(t, 0, state.Tournament.CurrentRound)
	assert.Empty(t, state.Rounds)
}

func TestGetTournamentState_BeforeStart(t *testing.T) {
	env := newTestEnv(t)
	data := env.createTournament(t, "A", "B", "C")

	state, err := env.tournaments.GetTournamentState(context.Background(), data.Tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, bracket.TournamentCreated, state.Tournament.Status)
	assert.Len(t, state.Prompts, 3)
	assert.Empty(t, state.Rounds)
	assert.Empty(t, state.Byes)
	assert.Equal(t, bracket.Progress{}, state.Progress)
	assert.Nil(t, state.Tournament.Winner)

	_, err = env.tournaments.GetTournamentState(context.Background(), 404)
	assert.ErrorIs(t, err, bracket.ErrTournamentNotFound)
}

func TestListMatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := env.createTournament(t, "A", "B", "C")
	started, err := env.tournaments.StartBracket(ctx, data.Tournament.ID)
	require.NoError(t, err)
	_, err = env.matches.SubmitResult(ctx, started.Matches[0].ID, promptID(t, data, "A"))
	require.NoError(t, err)

	all, err := env.tournaments.ListMatches(ctx, data.Tournament.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].RoundNumber)
	assert.Equal(t, 2, all[1].RoundNumber)

	second, err := env.tournaments.ListMatches(ctx, data.Tournament.ID, utils.Ptr(2))
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "A", second[0].Prompt1)
	assert.Equal(t, "C", second[0].Prompt2)

	future, err := env.tournaments.ListMatches(ctx, data.Tournament.ID, utils.Ptr(7))
	require.NoError(t, err)
	assert.Empty(t, future)

	_, err = env.tournaments.ListMatches(ctx, data.Tournament.ID, utils.Ptr(0))
	assert.ErrorIs(t, err, bracket.ErrInvalidInput)

	_, err = env.tournaments.ListMatches(ctx, 404, nil)
	assert.ErrorIs(t, err, bracket.ErrTournamentNotFound)
}

func TestLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := env.createTournament(t, "A", "B", "C", "D")
	started, err := env.tournaments.StartBracket(ctx, data.Tournament.ID)
	require.NoError(t, err)

	_, err = env.matches.SubmitResult(ctx, started.Matches[0].ID, promptID(t, data, "B"))
	require.NoError(t, err)

	standings, err := env.tournaments.Leaderboard(ctx, data.Tournament.ID)
	require.NoError(t, err)
	require.Len(t, standings, 4)
	assert.Equal(t, "B", standings[0].Text)
	assert.Equal(t, 1, standings[0].WinCount)
	assert.Equal(t, "A", standings[3].Text)
	assert.Equal(t, 1, standings[3].LossCount)

	_, err = env.tournaments.Leaderboard(ctx, 404)
	assert.ErrorIs(t, err, bracket.ErrTournamentNotFound)
}
