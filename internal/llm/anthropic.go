package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/config"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	client    anthropic.Client
	available bool
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewAnthropicProvider always returns a provider; without an API key it reports itself unavailable.
// Extra options are appended after the key, tests use them to point at a local server.
func NewAnthropicProvider(cfg config.LLMConfig, opts ...option.RequestOption) *AnthropicProvider {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(clientOpts...),
		available: cfg.APIKey != "",
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   cfg.Timeout,
	}
}

func (a *AnthropicProvider) Name() string {
	return "anthropic"
}

func (a *AnthropicProvider) IsAvailable() bool {
	return a.available
}

func (a *AnthropicProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	if !a.available {
		return nil, ErrNotConfigured
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	model := req.Model
	if model == "" {
		model = a.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var output strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}

	return &Completion{
		Text:         strings.TrimSpace(output.String()),
		Model:        string(resp.Model),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}
