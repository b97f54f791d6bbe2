package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 8000, cfg.Generation.TranscriptBudget)
	assert.Equal(t, 400*time.Millisecond, cfg.Server.AutoAdvance)
}

func TestReadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viben.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
store:
  backend: sql
  sql_driver: postgres
  dsn: postgres://localhost/viben
llm:
  provider: openai
  model: gpt-4o
server:
  auto_advance: 250ms
generation:
  strict_sequence: true
  delay: 1s
`), 0o644))

	cfg := Default()
	require.NoError(t, cfg.readFile(path))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sql", cfg.Store.Backend)
	assert.Equal(t, "postgres", cfg.Store.SQLDriver)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.AutoAdvance)
	assert.True(t, cfg.Generation.StrictSequence)
	assert.Equal(t, time.Second, cfg.Generation.Delay)
	assert.Equal(t, "tutorials", cfg.Store.Dir, "unset keys keep defaults")
}

func TestReadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viben.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store": {"backend": "memory"}}`), 0o644))

	cfg := Default()
	require.NoError(t, cfg.readFile(path))
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestReadFile_JSONDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viben.json")
	body := `{"server": {"auto_advance": "400ms"}, "generation": {"delay": "1s"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Default()
	require.NoError(t, cfg.readFile(path))
	assert.Equal(t, 400*time.Millisecond, cfg.Server.AutoAdvance)
	assert.Equal(t, time.Second, cfg.Generation.Delay)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"VIBEN_STORE":             "redis",
		"REDIS_URL":               "redis://localhost:6379/0",
		"ANTHROPIC_API_KEY":       "sk-ant",
		"OPENAI_API_KEY":          "sk-openai",
		"AIRTABLE_PAT":            "pat123",
		"VIBEN_TRANSCRIPT_BUDGET": "4000",
		"VIBEN_STRICT":            "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)
	assert.Equal(t, "pat123", cfg.Airtable.Token)
	assert.Equal(t, 4000, cfg.Generation.TranscriptBudget)
	assert.True(t, cfg.Generation.StrictSequence)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_ProviderSelectsKey(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookupFrom(map[string]string{
		"VIBEN_LLM_PROVIDER": "openai",
		"ANTHROPIC_API_KEY":  "sk-ant",
		"OPENAI_API_KEY":     "sk-openai",
	})))
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ApplyEnv(lookupFrom(map[string]string{"VIBEN_TRANSCRIPT_BUDGET": "lots"})))
	assert.Error(t, cfg.ApplyEnv(lookupFrom(map[string]string{"VIBEN_STRICT": "maybe"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "palm" }},
		{"redis without url", func(c *Config) { c.Store.Backend = "redis" }},
		{"zero budget", func(c *Config) { c.Generation.TranscriptBudget = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("VIBEN_DOTENV_TEST=from-file\n"), 0o644))
	t.Setenv("VIBEN_DOTENV_KEEP", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("VIBEN_DOTENV_KEEP=from-file\n"), 0o644))

	require.NoError(t, loadDotEnv(path, filepath.Join(dir, ".env.local"), filepath.Join(dir, "missing")))
	t.Cleanup(func() { os.Unsetenv("VIBEN_DOTENV_TEST") })
	assert.Equal(t, "from-file", os.Getenv("VIBEN_DOTENV_TEST"))
	assert.Equal(t, "from-env", os.Getenv("VIBEN_DOTENV_KEEP"))
}
