package bracket

import "errors"

var (
	ErrInvalidInput                  = errors.New("invalid input")
	ErrInvalidTournamentState        = errors.New("invalid tournament state")
	ErrTournamentNotFound            = errors.New("tournament not found")
	ErrTournamentAlreadyStarted      = errors.New("tournament bracket already started")
	ErrInsufficientPrompts           = errors.New("need at least 2 prompts to start tournament")
	ErrMatchNotFound                 = errors.New("match not found")
	ErrMatchAlreadyCompleted         = errors.New("match already completed")
	ErrInvalidWinner                 = errors.New("winner must be one of the match participants")
	ErrUpstreamGenerationUnavailable = errors.New("prompt generation service is unavailable")
)
