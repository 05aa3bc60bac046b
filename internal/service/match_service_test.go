package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/utils"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitResult_ThreePrompts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := env.createTournament(t, "A", "B", "C")
	tid := data.Tournament.ID

	started, err := env.tournaments.StartBracket(ctx, tid)
	require.NoError(t, err)
	require.Len(t, started.Matches, 1)
	require.Len(t, started.Byes, 1)
	assert.Equal(t, "C", started.Byes[0].Text)

	first, err := env.matches.SubmitResult(ctx, started.Matches[0].ID, promptID(t, data, "A"))
	require.NoError(t, err)
	assert.True(t, first.RoundCompleted)
	assert.False(t, first.TournamentCompleted)
	assert.Equal(t, 2, first.NextRound)
	require.Len(t, first.NextMatches, 1)
	assert.Empty(t, first.NextByes)
	assert.Equal(t, "A", first.NextMatches[0].Prompt1)
	assert.Equal(t, "C", first.NextMatches[0].Prompt2)

	final, err := env.matches.SubmitResult(ctx, first.NextMatches[0].ID, promptID(t, data, "C"))
	require.NoError(t, err)
	assert.True(t, final.RoundCompleted)
	assert.True(t, final.TournamentCompleted)
	require.NotNil(t, final.Champion)
	assert.Equal(t, "C", final.Champion.Text)

	state, err := env.tournaments.GetTournamentState(ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, state.Tournament.Status)
	assert.Equal(t, 2, state.Tournament.CurrentRound)
	require.NotNil(t, state.Tournament.Winner)
	assert.Equal(t, "C", *state.Tournament.Winner)
	assert.NotNil(t, state.Tournament.CompletedAt)
	assert.Equal(t, bracket.Progress{TotalMatches: 2, CompletedMatches: 2, CompletionPercentage: 100}, state.Progress)

	require.Len(t, state.Byes[1], 1)
	assert.Equal(t, "C", state.Byes[1][0].Text)
	assert.Empty(t, state.Byes[2])
	assert.Len(t, state.Rounds[1], 1)
	assert.Len(t, state.Rounds[2], 1)

	assert.Equal(t, []string{
		events.TopicTournamentCreated,
		events.TopicBracketStarted,
		events.TopicRoundStarted,
		events.TopicMatchCompleted,
		events.TopicRoundStarted,
		events.TopicMatchCompleted,
		events.TopicTournamentCompleted,
	}, env.publisher.types())

	assert.Equal(t, 2.0, counterValue(t, env.metrics, "prompt_tournament_matches_completed_total"))
	assert.Equal(t, 2.0, counterValue(t, env.metrics, "prompt_tournament_rounds_completed_total"))
	assert.Equal(t, 1.0, counterValue(t, env.metrics, "prompt_tournament_tournaments_completed_total"))
}

func TestSubmitResult_FourPrompts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := env.createTournament(t, "A", "B", "C", "D")

	started, err := env.tournaments.StartBracket(ctx, data.Tournament.ID)
	require.NoError(t, err)
	require.Len(t, started.Matches, 2)
	assert.Empty(t, started.Byes)

	// round 1 stays open until both matches are decided
	partial, err := env.matches.SubmitResult(ctx, started.Matches[1].ID, promptID(t, data, "D"))
	require.NoError(t, err)
	assert.False(t, partial.RoundCompleted)
	assert.Zero(t, partial.NextRound)
	assert.Empty(t, partial.NextMatches)

	done, err := env.matches.SubmitResult(ctx, started.Matches[0].ID, promptID(t, data, "B"))
	require.NoError(t, err)
	assert.True(t, done.RoundCompleted)
	assert.Equal(t, 2, done.NextRound)
	require.Len(t, done.NextMatches, 1)
	assert.Equal(t, "B", done.NextMatches[0].Prompt1)
	assert.Equal(t, "D", done.NextMatches[0].Prompt2)

	final, err := env.matches.SubmitResult(ctx, done.NextMatches[0].ID, promptID(t, data, "B"))
	require.NoError(t, err)
	assert.True(t, final.TournamentCompleted)
	assert.Equal(t, "B", final.Champion.Text)

	standings, err := env.tournaments.Leaderboard(ctx, data.Tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", standings[0].Text)
	assert.Equal(t, 2, standings[0].WinCount)
	assert.Equal(t, 0, standings[0].LossCount)
}

func TestSubmitResult_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	data := env.createTournament(t, "A", "B", "C", "D")
	started, err := env.tournaments.StartBracket(ctx, data.Tournament.ID)
	require.NoError(t, err)
	match := started.Matches[0]

	_, err = env.matches.SubmitResult(ctx, 9999, promptID(t, data, "A"))
	assert.ErrorIs(t, err, bracket.ErrMatchNotFound)

	// C plays in the other match
	_, err = env.matches.SubmitResult(ctx, match.ID, promptID(t, data, "C"))
	assert.ErrorIs(t, err, bracket.ErrInvalidWinner)

	pending, err := env.store.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchPending, pending.Status)
	assert.Nil(t, pending.WinnerID)

	_, err = env.matches.SubmitResult(ctx, match.ID, promptID(t, data, "A"))
	require.NoError(t, err)
	_, err = env.matches.SubmitResult(ctx, match.ID, promptID(t, data, "B"))
	assert.ErrorIs(t, err, bracket.ErrMatchAlreadyCompleted)

	decided, err := env.store.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	require.NotNil(t, decided.Winner)
	assert.Equal(t, "A", *decided.Winner)
}

func TestSubmitResult_ConcurrentRound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	texts := make([]string, 16)
	for i := range texts {
		texts[i] = fmt.Sprintf("Prompt %d", i+1)
	}
	data := env.createTournament(t, texts...)
	started, err := env.tournaments.StartBracket(ctx, data.Tournament.ID)
	require.NoError(t, err)
	require.Len(t, started.Matches, 8)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		advanced int
		errs     []error
	)
	for _, m := range started.Matches {
		wg.Add(1)
		go func(m bracket.Match) {
			defer wg.Done()
			outcome, err := env.matches.SubmitResult(ctx, m.ID, m.Prompt1ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if outcome.NextRound > 0 {
				advanced++
			}
		}(m)
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, advanced)

	second, err := env.tournaments.ListMatches(ctx, data.Tournament.ID, utils.Ptr(2))
	require.NoError(t, err)
	require.Len(t, second, 4)
	for i, m := range second {
		assert.Equal(t, i+1, m.MatchOrder)
		assert.Equal(t, texts[i*4], m.Prompt1)
		assert.Equal(t, texts[i*4+2], m.Prompt2)
	}

	state, err := env.tournaments.GetTournamentState(ctx, data.Tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Tournament.CurrentRound)
}

func TestSubmitResult_FullBracket(t *testing.T) {
	faker := gofakeit.New(7)

	for run := 0; run < 5; run++ {
		n := faker.IntRange(2, 20)
		t.Run(fmt.Sprintf("prompts_%d", n), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			texts := make([]string, n)
			for i := range texts {
				texts[i] = fmt.Sprintf("%d %s", i, faker.Sentence(5))
			}
			data := env.createTournament(t, texts...)
			started, err := env.tournaments.StartBracket(ctx, data.Tournament.ID)
			require.NoError(t, err)

			pending := started.Matches
			played := 0
			var champion *bracket.Contestant
			for len(pending) > 0 {
				m := pending[0]
				pending = pending[1:]
				winner := m.Prompt1ID
				if faker.Bool() {
					winner = m.Prompt2ID
				}

				outcome, err := env.matches.SubmitResult(ctx, m.ID, winner)
				require.NoError(t, err)
				played++
				pending = append(pending, outcome.NextMatches...)
				if outcome.TournamentCompleted {
					champion = outcome.Champion
				}
			}

			assert.Equal(t, n-1, played)
			require.NotNil(t, champion)

			state, err := env.tournaments.GetTournamentState(ctx, data.Tournament.ID)
			require.NoError(t, err)
			assert.Equal(t, bracket.TournamentCompleted, state.Tournament.Status)
			assert.Equal(t, bracket.TotalRounds(n), state.Tournament.CurrentRound)
			assert.Equal(t, champion.PromptID, *state.Tournament.WinnerPromptID)
			assert.Equal(t, 100.0, state.Progress.CompletionPercentage)

			standings, err := env.tournaments.Leaderboard(ctx, data.Tournament.ID)
			require.NoError(t, err)
			wins, losses := 0, 0
			for _, s := range standings {
				wins += s.WinCount
				losses += s.LossCount
				assert.LessOrEqual(t, s.LossCount, 1)
				if s.PromptID == champion.PromptID {
					assert.Zero(t, s.LossCount)
				} else {
					assert.Equal(t, 1, s.LossCount)
				}
			}
			assert.Equal(t, n-1, wins)
			assert.Equal(t, n-1, losses)
		})
	}
}
