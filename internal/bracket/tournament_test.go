package bracket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournament_Lifecycle(t *testing.T) {
	tournament := Tournament{ID: 1, InputQuestion: "What is Go?", Status: TournamentCreated}

	assert.ErrorIs(t, tournament.Advance(), ErrInvalidTournamentState)

	require.NoError(t, tournament.Start())
	assert.Equal(t, TournamentInProgress, tournament.Status)
	assert.Equal(t, 1, tournament.CurrentRound)
	assert.ErrorIs(t, tournament.Start(), ErrTournamentAlreadyStarted)

	require.NoError(t, tournament.Advance())
	assert.Equal(t, 2, tournament.CurrentRound)

	now := time.Now()
	require.NoError(t, tournament.Complete(Contestant{PromptID: 3, Text: "C"}, now))
	assert.True(t, tournament.IsCompleted())
	assert.Equal(t, int64(3), *tournament.WinnerPromptID)
	assert.Equal(t, "C", *tournament.Winner)
	assert.Equal(t, 2, tournament.CurrentRound, "completion keeps the final round")

	assert.ErrorIs(t, tournament.Start(), ErrTournamentAlreadyStarted)
	assert.ErrorIs(t, tournament.Complete(Contestant{PromptID: 1}, now), ErrInvalidTournamentState)
}
