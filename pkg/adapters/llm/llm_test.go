package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    string `json:"system"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Stream  *bool          `json:"stream"`
	Format  string         `json:"format"`
	Options map[string]any `json:"options"`
}

func capture(t *testing.T, path, reply string, got *wireRequest, headers *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if headers != nil {
			*headers = r.Header.Clone()
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var conversation = []domain.ChatMessage{
	{Role: domain.RoleBot, Content: "Ask me anything"},
	{Role: domain.RoleUser, Content: "What is MCP?"},
}

func TestAnthropic_Generate(t *testing.T) {
	var got wireRequest
	var hdr http.Header
	srv := capture(t, "/messages", `{"content":[{"type":"thinking","text":"hmm"},{"type":"text","text":"{\"id\":\"x\"}"}]}`, &got, &hdr)

	c, err := NewAnthropic(Config{APIKey: "sk-test", BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"x"}`, out, "first text block wins")

	assert.Equal(t, DefaultAnthropicModel, got.Model)
	assert.Equal(t, 8192, got.MaxTokens)
	assert.Equal(t, "system", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "sk-test", hdr.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, hdr.Get("anthropic-version"))
}

func TestAnthropic_Chat(t *testing.T) {
	var got wireRequest
	srv := capture(t, "/messages", `{"content":[{"type":"text","text":"A protocol."}]}`, &got, nil)

	c, err := NewAnthropic(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), "tutor", conversation)
	require.NoError(t, err)
	assert.Equal(t, "A protocol.", out)
	assert.Equal(t, 512, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestAnthropic_NoText(t *testing.T) {
	var got wireRequest
	srv := capture(t, "/messages", `{"content":[]}`, &got, nil)
	c, err := NewAnthropic(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestAnthropic_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, 529)
	}))
	defer srv.Close()

	c, err := NewAnthropic(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic API error")
	assert.Contains(t, err.Error(), "overloaded")
}

func TestOpenAI(t *testing.T) {
	var got wireRequest
	var hdr http.Header
	srv := capture(t, "/chat/completions", `{"choices":[{"message":{"content":"  hi  "}}]}`, &got, &hdr)

	c, err := NewOpenAI(Config{APIKey: "sk-o", BaseURL: srv.URL + "/", Model: "gpt-test"})
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), "tutor", conversation)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "Bearer sk-o", hdr.Get("Authorization"))
}

func TestOpenAI_NoChoices(t *testing.T) {
	var got wireRequest
	srv := capture(t, "/chat/completions", `{"choices":[]}`, &got, nil)
	c, err := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestOllama(t *testing.T) {
	var got wireRequest
	srv := capture(t, "/api/chat", `{"message":{"role":"assistant","content":"{\"id\":\"o\"}"},"done":true}`, &got, nil)

	c := NewOllama(Config{BaseURL: srv.URL})
	out, err := c.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"o"}`, out)

	assert.Equal(t, DefaultOllamaModel, got.Model)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
	assert.Equal(t, "json", got.Format)
	assert.EqualValues(t, 8192, got.Options["num_predict"])
}

func TestNew(t *testing.T) {
	_, err := New("anthropic", Config{})
	assert.ErrorContains(t, err, "API key")

	c, err := New("", Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "Anthropic (claude-sonnet-4-20250514)", c.Name())

	c, err = New("OLLAMA", Config{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "Ollama (m)", c.Name())

	_, err = New("gemini", Config{})
	assert.ErrorContains(t, err, "unknown llm provider")
}
