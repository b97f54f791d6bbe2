package ports

import (
	"context"

	"github.com/aretw0/viben/pkg/domain"
)

// Generator is the text-generation collaborator: system and user prompt in,
// response text out. The caller owns timeouts through ctx.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Chatter continues a conversation for the "ask" modality.
type Chatter interface {
	Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// ChatterFunc adapts a function to the Chatter interface.
type ChatterFunc func(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error)

func (f ChatterFunc) Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	return f(ctx, systemPrompt, messages)
}
