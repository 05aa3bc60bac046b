package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusBadRequest, "bad request", msg, err)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusNotFound, "not found", msg, err)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusConflict, "conflict", msg, err)
}

func UnprocessableEntity(w http.ResponseWriter, msg string, err error) {
	clientError(w, http.StatusUnprocessableEntity, "unprocessable entity", msg, err)
}

func TooManyRequests(w http.ResponseWriter) {
	writeError(w, http.StatusTooManyRequests, "Too many requests")
}

func clientError(w http.ResponseWriter, status int, kind, msg string, err error) {
	if err != nil {
		slog.Warn(kind, "message", msg, "error", err)
	} else {
		slog.Warn(kind, "message", msg)
	}
	writeError(w, status, msg)
}

// StatusFor maps a domain error to its HTTP status. Unknown errors are internal.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrInvalidInput),
		errors.Is(err, bracket.ErrInvalidTournamentState),
		errors.Is(err, bracket.ErrInsufficientPrompts),
		errors.Is(err, bracket.ErrInvalidWinner):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrTournamentNotFound),
		errors.Is(err, bracket.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrTournamentAlreadyStarted),
		errors.Is(err, bracket.ErrMatchAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, bracket.ErrUpstreamGenerationUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status StatusFor picks. Client errors expose the error text, anything
// else is logged under msg and answered with a generic body.
func Error(w http.ResponseWriter, msg string, err error) {
	switch status := StatusFor(err); status {
	case http.StatusInternalServerError:
		InternalServerError(w, msg, err)
	default:
		clientError(w, status, msg, err.Error(), nil)
	}
}
