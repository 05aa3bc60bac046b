package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/AdamBeresnev/prompt-tournament/internal/bracket"
	"github.com/AdamBeresnev/prompt-tournament/internal/config"
	"github.com/AdamBeresnev/prompt-tournament/internal/llm"
	"github.com/AdamBeresnev/prompt-tournament/internal/metrics"
	"github.com/AdamBeresnev/prompt-tournament/internal/utils"
	"go.opentelemetry.io/otel/attribute"
)

// maxStaleAttempts bounds generation rounds that add no new prompt to the pool.
const maxStaleAttempts = 3

const (
	DefaultTestModel       = "claude-haiku-4-5-20251001"
	DefaultTestMaxTokens   = 150
	DefaultTestTemperature = 0.7
	MaxTestTokens          = 4000
)

var AllowedTestModels = []string{
	"claude-haiku-4-5-20251001",
	"claude-sonnet-4-5-20250929",
	"claude-opus-4-5-20251101",
}

var fallbackTemplates = []string{
	"Please tell me: %s",
	"I would like to know: %s",
	"Could you explain: %s",
	"Help me understand: %s",
	"What is the answer to: %s",
	"Can you provide information about: %s",
	"I need to know: %s",
	"Please clarify: %s",
	"Can you help me with: %s",
	"I'm curious about: %s",
	"Could you describe: %s",
	"What can you tell me about: %s",
}

type PromptService struct {
	provider  llm.Provider
	generator *llm.PromptGenerator
	cfg       config.TournamentConfig
	deps
}

func NewPromptService(provider llm.Provider, generationModel string, cfg config.TournamentConfig, opts ...Option) *PromptService {
	d := newDeps(opts)
	return &PromptService{
		provider:  provider,
		generator: llm.NewPromptGenerator(provider, generationModel),
		cfg:       cfg,
		deps:      d,
	}
}

func (s *PromptService) GeneratorAvailable() bool {
	return s.generator.IsAvailable()
}

func (s *PromptService) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

func normalizePrompt(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// DedupePrompts trims prompts, drops blanks and keeps the first of any case-insensitive duplicates.
func DedupePrompts(prompts []string) []string {
	seen := make(map[string]struct{}, len(prompts))
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// FallbackPrompts fills up to n prompts from fixed templates, skipping any already in existing.
func FallbackPrompts(question string, n int, existing []string) []string {
	taken := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		taken[normalizePrompt(p)] = struct{}{}
	}

	var out []string
	for _, tmpl := range fallbackTemplates {
		if len(out) == n {
			break
		}
		p := fmt.Sprintf(tmpl, question)
		if _, ok := taken[normalizePrompt(p)]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// BuildPool returns the ordered prompt pool for a new tournament: the unique custom prompts first,
// topped up by the generator until total is reached.
func (s *PromptService) BuildPool(ctx context.Context, question string, custom []string, total *int) (pool []string, err error) {
	ctx, span := s.tracer.Start(ctx, "PromptService.BuildPool")
	defer func() { endSpan(span, err) }()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: input_question is required", bracket.ErrInvalidInput)
	}

	pool = DedupePrompts(custom)
	want := utils.OrDefault(total, max(len(pool), s.cfg.DefaultTotalPrompts))
	if want < 2 || want > s.cfg.MaxTotalPrompts {
		return nil, fmt.Errorf("%w: total_prompts must be between 2 and %d, got %d", bracket.ErrInvalidInput, s.cfg.MaxTotalPrompts, want)
	}
	span.SetAttributes(attribute.Int("prompts.custom", len(pool)), attribute.Int("prompts.total", want))

	if len(pool) >= want {
		return pool[:want], nil
	}

	if !s.generator.IsAvailable() {
		return nil, fmt.Errorf("%w: %d more prompts are needed, add them manually", bracket.ErrUpstreamGenerationUnavailable, want-len(pool))
	}

	stale := 0
	for len(pool) < want && stale < maxStaleAttempts {
		need := want - len(pool)
		generated, genErr := s.generator.Generate(ctx, question, need, pool)
		if genErr != nil {
			s.logger.WarnContext(ctx, "Prompt generation failed, using fallback templates", "error", genErr)
			s.metrics.PromptGeneration(metrics.GenerationFallback)
			generated = FallbackPrompts(question, need, pool)
		} else {
			s.metrics.PromptGeneration(metrics.GenerationGenerated)
		}

		before := len(pool)
		pool = DedupePrompts(append(pool, generated...))
		if len(pool) == before {
			stale++
		}
	}

	if len(pool) < want {
		s.metrics.PromptGeneration(metrics.GenerationFailed)
		return nil, fmt.Errorf("%w: could only assemble %d of %d prompts", bracket.ErrUpstreamGenerationUnavailable, len(pool), want)
	}
	return pool[:want], nil
}

type TestPromptInput struct {
	Prompt      string
	Model       *string
	MaxTokens   *int
	Temperature *float64
}

type TestPromptResult struct {
	Prompt           string
	Response         string
	Model            string
	MaxTokens        int
	Temperature      float64
	PromptTokens     int64
	CompletionTokens int64
}

func (r TestPromptResult) TotalTokens() int64 {
	return r.PromptTokens + r.CompletionTokens
}

// TestPrompt sends one prompt to the provider so users can preview a candidate's answer.
func (s *PromptService) TestPrompt(ctx context.Context, in TestPromptInput) (result *TestPromptResult, err error) {
	ctx, span := s.tracer.Start(ctx, "PromptService.TestPrompt")
	defer func() { endSpan(span, err) }()

	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required and cannot be empty", bracket.ErrInvalidInput)
	}

	model := utils.OrDefault(in.Model, DefaultTestModel)
	if !slices.Contains(AllowedTestModels, model) {
		return nil, fmt.Errorf("%w: model must be one of: %s", bracket.ErrInvalidInput, strings.Join(AllowedTestModels, ", "))
	}

	maxTokens := utils.OrDefault(in.MaxTokens, DefaultTestMaxTokens)
	if maxTokens < 1 || maxTokens > MaxTestTokens {
		return nil, fmt.Errorf("%w: max_tokens must be an integer between 1 and %d", bracket.ErrInvalidInput, MaxTestTokens)
	}

	temperature := utils.OrDefault(in.Temperature, DefaultTestTemperature)
	if temperature < 0 || temperature > 1 {
		return nil, fmt.Errorf("%w: temperature must be a number between 0 and 1", bracket.ErrInvalidInput)
	}

	if s.provider == nil || !s.provider.IsAvailable() {
		return nil, fmt.Errorf("%w: no API key configured", bracket.ErrUpstreamGenerationUnavailable)
	}

	span.SetAttributes(attribute.String("llm.model", model), attribute.Int("llm.max_tokens", maxTokens))
	completion, err := s.provider.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to test prompt: %w", err)
	}

	return &TestPromptResult{
		Prompt:           prompt,
		Response:         completion.Text,
		Model:            model,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		PromptTokens:     completion.InputTokens,
		CompletionTokens: completion.OutputTokens,
	}, nil
}
