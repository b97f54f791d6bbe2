// Package llm provides generation clients for hosted and local language models.
// Every client implements both ports.Generator and ports.Chatter.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"

	DefaultMaxTokens     = 8192
	DefaultChatMaxTokens = 512

	defaultHTTPTimeout = 5 * time.Minute
)

// ErrNoText is returned when a response carries no text content.
var ErrNoText = errors.New("no text in response")

// Config describes how to build an LLM client.
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	MaxTokens     int
	ChatMaxTokens int
	HTTPClient    *http.Client
}

// Client is the union of the generation and chat ports.
type Client interface {
	ports.Generator
	ports.Chatter
	Name() string
}

// New builds the client for the named provider.
func New(provider string, cfg Config) (Client, error) {
	switch strings.ToLower(provider) {
	case "", ProviderAnthropic:
		return NewAnthropic(cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	case ProviderOllama:
		return NewOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

func (c Config) withDefaults(model, baseURL string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.ChatMaxTokens <= 0 {
		c.ChatMaxTokens = DefaultChatMaxTokens
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return c
}

// chatRole maps stored roles onto the wire roles used by every provider.
func chatRole(r domain.ChatRole) string {
	if r == domain.RoleBot {
		return "assistant"
	}
	return "user"
}

// postJSON sends payload and decodes a successful response into out.
func postJSON(ctx context.Context, hc *http.Client, name, endpoint string, headers map[string]string, payload, out any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s API error: %s (%s)", name, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s API decode: %w", name, err)
	}
	return nil
}
