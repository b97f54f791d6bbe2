package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/viben/pkg/domain"
)

const (
	DefaultOllamaModel   = "llama3.1:8b"
	defaultOllamaBaseURL = "http://localhost:11434"
)

type ollamaClient struct {
	cfg Config
}

// NewOllama creates a client for a local Ollama server.
func NewOllama(cfg Config) Client {
	return &ollamaClient{cfg: cfg.withDefaults(DefaultOllamaModel, defaultOllamaBaseURL)}
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.cfg.Model)
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *ollamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, c.cfg.MaxTokens, "json", []ollamaMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}

func (c *ollamaClient) Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	msgs := make([]ollamaMessage, 0, len(messages)+1)
	msgs = append(msgs, ollamaMessage{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		msgs = append(msgs, ollamaMessage{Role: chatRole(m.Role), Content: m.Content})
	}
	return c.chat(ctx, c.cfg.ChatMaxTokens, "", msgs)
}

func (c *ollamaClient) chat(ctx context.Context, maxTokens int, format string, msgs []ollamaMessage) (string, error) {
	payload := map[string]any{
		"model":    c.cfg.Model,
		"messages": msgs,
		"stream":   false,
		"options":  map[string]any{"num_predict": maxTokens},
	}
	if format != "" {
		payload["format"] = format
	}
	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := postJSON(ctx, c.cfg.HTTPClient, "ollama", c.cfg.BaseURL+"/api/chat", nil, payload, &parsed); err != nil {
		return "", err
	}
	text := strings.TrimSpace(parsed.Message.Content)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
