package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/prompt-tournament/internal/events"
	"github.com/AdamBeresnev/prompt-tournament/internal/httputil"
	"github.com/AdamBeresnev/prompt-tournament/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func (a *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if a.cfg.Server.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(a.cfg.Server.AllowedOrigins))

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", a.metrics.Handler())

	apiRoutes := func(r chi.Router) {
		// The event stream is long lived and not rate limited.
		r.Get("/tournament/{id}/events", a.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(a.limiter, a.metrics))

			r.Post("/tournament", a.handleCreateTournament)
			r.Get("/tournament/{id}/status", a.handleTournamentStatus)
			r.Post("/tournament/{id}/start-bracket", a.handleStartBracket)
			r.Get("/tournament/{id}/matches", a.handleListMatches)
			r.Get("/tournament/{id}/leaderboard", a.handleLeaderboard)
			r.Post("/match/{id}/result", a.handleSubmitResult)

			r.Get("/prompts", a.handleListPrompts)
			r.Get("/openai-status", a.handleGeneratorStatus)
			r.Post("/test-prompt", a.handleTestPrompt)
		})
	}
	if base := strings.TrimRight(a.cfg.Server.BasePath, "/"); base != "" {
		r.Route(base, apiRoutes)
	} else {
		r.Group(apiRoutes)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "Route not found", nil)
	})

	return r
}

// idParam reads a positive integer id from the route.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// tournamentChannel names the SSE channel a subscriber joins, one per tournament.
func tournamentChannel(r *http.Request) string {
	id, ok := idParam(r)
	if !ok {
		return ""
	}
	return events.Channel(id)
}
