package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/viben/pkg/domain"
)

const (
	DefaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

type anthropicClient struct {
	cfg Config
}

// NewAnthropic creates a Messages API client.
func NewAnthropic(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key not set")
	}
	return &anthropicClient{cfg: cfg.withDefaults(DefaultAnthropicModel, defaultAnthropicBaseURL)}, nil
}

func (c *anthropicClient) Name() string {
	return fmt.Sprintf("Anthropic (%s)", c.cfg.Model)
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.send(ctx, anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: userPrompt}},
	})
}

func (c *anthropicClient) Chat(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	msgs := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, anthropicMessage{Role: chatRole(m.Role), Content: m.Content})
	}
	return c.send(ctx, anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.ChatMaxTokens,
		System:    systemPrompt,
		Messages:  msgs,
	})
}

func (c *anthropicClient) send(ctx context.Context, req anthropicRequest) (string, error) {
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}
	var resp anthropicResponse
	if err := postJSON(ctx, c.cfg.HTTPClient, "anthropic", c.cfg.BaseURL+"/messages", headers, req, &resp); err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", ErrNoText
}
