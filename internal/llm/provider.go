package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by providers that have no credentials.
var ErrNotConfigured = errors.New("llm provider not configured")

type Request struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

type Completion struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Provider is a text completion backend.
type Provider interface {
	Name() string
	IsAvailable() bool
	Complete(ctx context.Context, req Request) (*Completion, error)
}
