package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/api"
	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/httputil"
	"github.com/AdamBeresnev/prompt-tournament/internal/service"
	"github.com/AdamBeresnev/prompt-tournament/internal/utils"
)

// maxBodyBytes caps request bodies, custom prompt lists included.
const maxBodyBytes = 1 << 20

const (
	msgBracketStarted  = "Tournament bracket started successfully"
	msgResultSubmitted = "Match result submitted successfully"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", bracket.ErrInvalidInput, tooLarge.Limit)
		}
		return fmt.Errorf("%w: request body must be valid JSON", bracket.ErrInvalidInput)
	}
	return nil
}

func (a *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		httputil.InternalServerError(w, "Database ping failed", err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *application) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTournamentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.Error(w, "Invalid request body", err)
		return
	}

	data, err := a.tournaments.CreateTournament(r.Context(), service.CreateTournamentInput{
		InputQuestion: req.InputQuestion,
		CustomPrompts: req.CustomPrompts,
		TotalPrompts:  req.TotalPrompts,
	})
	if err != nil {
		httputil.Error(w, "Failed to create tournament", err)
		return
	}

	texts := make([]string, 0, len(data.Prompts))
	for _, p := range data.Prompts {
		texts = append(texts, p.Text)
	}
	httputil.JSON(w, http.StatusCreated, api.CreateTournamentResponse{
		TournamentID:  data.Tournament.ID,
		InputQuestion: data.Tournament.InputQuestion,
		Prompts:       texts,
	})
}

func (a *application) handleTournamentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.BadRequest(w, "Invalid tournament ID", nil)
		return
	}

	state, err := a.tournaments.GetTournamentState(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	httputil.JSON(w, http.StatusOK, newTournamentStatus(state))
}

func newTournamentStatus(state *service.TournamentState) api.TournamentStatus {
	t := state.Tournament
	status := api.TournamentStatus{
		TournamentID:  t.ID,
		InputQuestion: t.InputQuestion,
		Status:        string(t.Status),
		CurrentRound:  t.CurrentRound,
		TotalPrompts:  len(state.Prompts),
		TotalRounds:   bracket.TotalRounds(len(state.Prompts)),
		Prompts:       api.NewPrompts(state.Prompts),
		Progress: api.Progress{
			TotalMatches:         state.Progress.TotalMatches,
			CompletedMatches:     state.Progress.CompletedMatches,
			CompletionPercentage: state.Progress.CompletionPercentage,
		},
		Rounds:   make(map[int][]api.Match, len(state.Rounds)),
		Byes:     make(map[int][]string, len(state.Byes)),
		Winner:   t.Winner,
		WinnerID: t.WinnerPromptID,
	}
	for round, matches := range state.Rounds {
		status.Rounds[round] = api.NewMatches(matches)
	}
	for round, byes := range state.Byes {
		status.Byes[round] = byeTexts(byes)
	}
	return status
}

func byeTexts(byes []bracket.Bye) []string {
	out := make([]string, 0, len(byes))
	for _, b := range byes {
		out = append(out, b.Text)
	}
	return out
}

func (a *application) handleStartBracket(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.BadRequest(w, "Invalid tournament ID", nil)
		return
	}

	started, err := a.tournaments.StartBracket(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to start bracket", err)
		return
	}

	httputil.JSON(w, http.StatusOK, api.StartBracketResponse{
		Message:       msgBracketStarted,
		TournamentID:  started.Tournament.ID,
		Round1Matches: api.NewMatches(started.Matches),
		TotalMatches:  len(started.Matches),
		Byes:          byeTexts(started.Byes),
	})
}

func (a *application) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	matchID, ok := idParam(r)
	if !ok {
		httputil.BadRequest(w, "Invalid match ID", nil)
		return
	}

	var req api.SubmitResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.Error(w, "Invalid request body", err)
		return
	}
	if req.WinnerID == nil {
		httputil.BadRequest(w, "winner_id is required", nil)
		return
	}

	outcome, err := a.matches.SubmitResult(r.Context(), matchID, *req.WinnerID)
	if err != nil {
		httputil.Error(w, "Failed to submit match result", err)
		return
	}

	resp := api.SubmitResultResponse{
		Message:        msgResultSubmitted,
		MatchID:        outcome.Match.ID,
		Winner:         utils.OrZero(outcome.Match.Winner),
		RoundCompleted: outcome.RoundCompleted,
	}
	if outcome.NextRound > 0 {
		resp.NextRound = utils.Ptr(outcome.NextRound)
		resp.NextRoundMatches = api.NewMatches(outcome.NextMatches)
		resp.ByePrompts = byeTexts(outcome.NextByes)
	}
	if outcome.TournamentCompleted {
		resp.TournamentCompleted = true
		resp.TournamentWinner = utils.Ptr(outcome.Champion.Text)
	}
	httputil.JSON(w, http.StatusOK, resp)
}

func (a *application) handleListMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.BadRequest(w, "Invalid tournament ID", nil)
		return
	}

	var round *int
	if v := r.URL.Query().Get("round"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "round must be a positive integer", err)
			return
		}
		round = &n
	}

	matches, err := a.tournaments.ListMatches(r.Context(), id, round)
	if err != nil {
		httputil.Error(w, "Failed to list matches", err)
		return
	}
	httputil.JSON(w, http.StatusOK, api.MatchesResponse{
		TournamentID: id,
		Matches:      api.NewMatches(matches),
		TotalMatches: len(matches),
	})
}

func (a *application) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.BadRequest(w, "Invalid tournament ID", nil)
		return
	}

	stats, err := a.tournaments.Leaderboard(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get leaderboard", err)
		return
	}
	httputil.JSON(w, http.StatusOK, api.LeaderboardResponse{TournamentID: id, Standings: api.NewStandings(stats)})
}

func (a *application) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	prompts, err := a.tournaments.ListPrompts(r.Context(), limit)
	if err != nil {
		httputil.Error(w, "Failed to list prompts", err)
		return
	}
	httputil.JSON(w, http.StatusOK, api.NewPrompts(prompts))
}

func (a *application) handleGeneratorStatus(w http.ResponseWriter, r *http.Request) {
	status := api.GeneratorStatus{Available: a.prompts.GeneratorAvailable()}
	if status.Available {
		status.Provider = a.prompts.ProviderName()
	}
	httputil.JSON(w, http.StatusOK, status)
}

func (a *application) handleTestPrompt(w http.ResponseWriter, r *http.Request) {
	var req api.TestPromptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.Error(w, "Invalid request body", err)
		return
	}

	result, err := a.prompts.TestPrompt(r.Context(), service.TestPromptInput{
		Prompt:      req.Prompt,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		httputil.Error(w, "Failed to test prompt", err)
		return
	}

	httputil.JSON(w, http.StatusOK, api.TestPromptResponse{
		Prompt:      result.Prompt,
		Response:    result.Response,
		Model:       result.Model,
		MaxTokens:   result.MaxTokens,
		Temperature: result.Temperature,
		Usage: api.Usage{
			PromptTokens:     result.PromptTokens,
			CompletionTokens: result.CompletionTokens,
			TotalTokens:      result.TotalTokens(),
		},
	})
}

// handleEvents streams the tournament's domain events as server-sent events.
func (a *application) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.BadRequest(w, "Invalid tournament ID", nil)
		return
	}
	if err := a.tournaments.Exists(r.Context(), id); err != nil {
		httputil.Error(w, "Failed to open event stream", err)
		return
	}

	// Streams outlive the server write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		a.logger.Debug("Could not clear write deadline for event stream", "error", err)
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Shutdown ends open streams through a.streams.
	defer context.AfterFunc(a.streams, cancel)()
	a.sse.ServeHTTP(w, r.WithContext(ctx))
}
