package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/store"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// createRound persists a planned round: its matches in pairing order and its byes in bye order.
func createRound(ctx context.Context, st *store.TournamentStore, tx *sqlx.Tx, tournamentID int64, round int, plan bracket.RoundPlan, now time.Time) ([]bracket.Match, []bracket.Bye, error) {
	matches := make([]bracket.Match, 0, len(plan.Pairings))
	for i, p := range plan.Pairings {
		matches = append(matches, bracket.Match{
			TournamentID: tournamentID,
			RoundNumber:  round,
			MatchOrder:   i + 1,
			Prompt1ID:    p.First.PromptID,
			Prompt2ID:    p.Second.PromptID,
			Prompt1:      p.First.Text,
			Prompt2:      p.Second.Text,
			Status:       bracket.MatchPending,
			CreatedAt:    now,
		})
	}
	if err := st.CreateMatches(ctx, tx, matches); err != nil {
		return nil, nil, fmt.Errorf("failed to create round %d matches: %w", round, err)
	}

	byes := make([]bracket.Bye, 0, len(plan.Byes))
	for i, c := range plan.Byes {
		byes = append(byes, bracket.Bye{
			TournamentID: tournamentID,
			RoundNumber:  round,
			PromptID:     c.PromptID,
			ByeOrder:     i + 1,
			Text:         c.Text,
		})
	}
	if err := st.CreateByes(ctx, tx, byes); err != nil {
		return nil, nil, fmt.Errorf("failed to create round %d byes: %w", round, err)
	}

	return matches, byes, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
