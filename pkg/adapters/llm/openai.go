package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/viben/pkg/domain"
)

const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

type openAIClient struct {
	cfg Config
}

// NewOpenAI creates a Chat Completions client. Any compatible endpoint works via BaseURL.
func NewOpenAI(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key not set")
	}
	return &openAIClient{cfg: cfg.withDefaults(DefaultOpenAIModel, defaultOpenAIBaseURL)}, nil
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.cfg.Model)
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *openAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, c.cfg.MaxTokens, []openAIMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}

func (c *openAIClient) Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	msgs := make([]openAIMessage, 0, len(messages)+1)
	msgs = append(msgs, openAIMessage{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		msgs = append(msgs, openAIMessage{Role: chatRole(m.Role), Content: m.Content})
	}
	return c.chat(ctx, c.cfg.ChatMaxTokens, msgs)
}

func (c *openAIClient) chat(ctx context.Context, maxTokens int, msgs []openAIMessage) (string, error) {
	payload := map[string]any{
		"model":      c.cfg.Model,
		"messages":   msgs,
		"max_tokens": maxTokens,
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	if err := postJSON(ctx, c.cfg.HTTPClient, "openai", c.cfg.BaseURL+"/chat/completions", headers, payload, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrNoText
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
