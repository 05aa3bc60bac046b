package llm

import (
	"context"
	"fmt"
	"strings"
)

const generationSystemPrompt = "You are a helpful assistant that generates diverse prompt variations for AI testing. " +
	"Generate prompts that ask the same question in different ways, with varying styles, formality levels, and approaches."

// GenerationPrompt builds the user message asking for count rephrasings of question, steering away
// from prompts the pool already holds.
func GenerationPrompt(question string, count int, existing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d different ways to ask this question: '%s'. ", count, question)
	b.WriteString("Each prompt should be unique and ask for the same information but with different phrasing, tone, or approach.")

	if len(existing) > 0 {
		b.WriteString("\n\nAVOID creating prompts similar to these existing ones:")
		for _, p := range existing {
			b.WriteString("\n- ")
			b.WriteString(p)
		}
	}

	b.WriteString("\n\nReturn only the prompts, one per line, without numbering or bullet points.")
	return b.String()
}

// ParseLines splits a completion into trimmed non-empty lines, keeping at most limit of them.
func ParseLines(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

// PromptGenerator asks a provider for prompt variations.
type PromptGenerator struct {
	provider Provider
	model    string
}

func NewPromptGenerator(provider Provider, model string) *PromptGenerator {
	return &PromptGenerator{provider: provider, model: model}
}

func (g *PromptGenerator) IsAvailable() bool {
	return g.provider != nil && g.provider.IsAvailable()
}

func (g *PromptGenerator) Generate(ctx context.Context, question string, count int, existing []string) ([]string, error) {
	if !g.IsAvailable() {
		return nil, ErrNotConfigured
	}

	completion, err := g.provider.Complete(ctx, Request{
		System:      generationSystemPrompt,
		Prompt:      GenerationPrompt(question, count, existing),
		Model:       g.model,
		MaxTokens:   500,
		Temperature: 0.8,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate prompts: %w", err)
	}
	return ParseLines(completion.Text, count), nil
}
