// Package openai rephrases templated explanation summaries through a
// chat-completion model. It backs the optional summarize tool; the
// engine works without it.
package openai

import (
	"context"
	"fmt"
	"strings"

	backend "github.com/sashabaranov/go-openai"

	"github.com/aretw0/forager/pkg/domain"
)

const defaultModel = backend.GPT4oMini

// Summarizer implements ports.Summarizer on the OpenAI chat API.
type Summarizer struct {
	client *backend.Client
	model  string
}

type Option func(*Summarizer)

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(s *Summarizer) { s.model = model }
}

// New creates a summarizer. baseURL may point at any OpenAI-compatible
// endpoint; empty means the public API.
func New(apiKey, baseURL string, opts ...Option) *Summarizer {
	cfg := backend.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	s := &Summarizer{
		client: backend.NewClientWithConfig(cfg),
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize rewrites the templated summary into one or two natural
// sentences. The model gets the structured explanation as grounding and
// must not invent offers.
func (s *Summarizer) Summarize(ctx context.Context, query string, expl domain.Explanation) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, backend.ChatCompletionRequest{
		Model: s.model,
		Messages: []backend.ChatCompletionMessage{
			{
				Role: backend.ChatMessageRoleSystem,
				Content: "You rewrite shopping recommendations. Rephrase the given " +
					"summary into at most two natural sentences. Mention only the " +
					"options named in the input. No markdown.",
			},
			{
				Role:    backend.ChatMessageRoleUser,
				Content: prompt(query, expl),
			},
		},
		MaxTokens:   120,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func prompt(query string, expl domain.Explanation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\nWinner: %s\nSummary: %s\n", query, expl.Winner, expl.Summary)
	for _, t := range expl.Tradeoffs {
		fmt.Fprintf(&sb, "Tradeoff: %s\n", t.Note)
	}
	return sb.String()
}
