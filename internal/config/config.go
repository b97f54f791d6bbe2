// Package config loads CLI and server settings from a YAML (or JSON) file,
// .env files and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "viben.yaml"

// DotEnvFiles are loaded in order; variables already set are never overridden.
var DotEnvFiles = []string{".env", ".env.local"}

type Config struct {
	LogLevel   string           `yaml:"log_level" json:"log_level"`
	Store      StoreConfig      `yaml:"store" json:"store"`
	LLM        LLMConfig        `yaml:"llm" json:"llm"`
	Airtable   AirtableConfig   `yaml:"airtable" json:"airtable"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Generation GenerationConfig `yaml:"generation" json:"generation"`
}

type StoreConfig struct {
	// Backend is one of file, loam, redis, sql or memory.
	Backend     string `yaml:"backend" json:"backend"`
	Dir         string `yaml:"dir" json:"dir"`
	RedisURL    string `yaml:"redis_url" json:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix" json:"redis_prefix"`
	SQLDriver   string `yaml:"sql_driver" json:"sql_driver"`
	DSN         string `yaml:"dsn" json:"dsn"`
	// Sanitize strips disallowed markup from card text on save.
	Sanitize bool `yaml:"sanitize" json:"sanitize"`
}

type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider"`
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"api_key" json:"api_key"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

type AirtableConfig struct {
	Token   string `yaml:"token" json:"token"`
	BaseID  string `yaml:"base_id" json:"base_id"`
	TableID string `yaml:"table_id" json:"table_id"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr" json:"addr"`
	AutoAdvance time.Duration `yaml:"auto_advance" json:"auto_advance"`
}

type GenerationConfig struct {
	StrictSequence   bool          `yaml:"strict_sequence" json:"strict_sequence"`
	TranscriptBudget int           `yaml:"transcript_budget" json:"transcript_budget"`
	Concurrency      int           `yaml:"concurrency" json:"concurrency"`
	Delay            time.Duration `yaml:"delay" json:"delay"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend:     "file",
			Dir:         "tutorials",
			RedisPrefix: "viben:tutorial:",
			SQLDriver:   "sqlite",
			DSN:         "viben.db",
		},
		LLM: LLMConfig{
			Provider: "anthropic",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			AutoAdvance: 400 * time.Millisecond,
		},
		Generation: GenerationConfig{
			TranscriptBudget: 8000,
			Concurrency:      1,
			Delay:            2 * time.Second,
		},
	}
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// then the .env files, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := loadDotEnv(DotEnvFiles...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	// JSON is valid YAML, and yaml.v3 parses duration strings like "400ms".
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func loadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.LogLevel, "VIBEN_LOG_LEVEL")
	str(&c.Store.Backend, "VIBEN_STORE")
	str(&c.Store.Dir, "VIBEN_STORE_DIR")
	str(&c.Store.RedisURL, "VIBEN_REDIS_URL", "REDIS_URL")
	str(&c.Store.RedisPrefix, "VIBEN_REDIS_PREFIX")
	str(&c.Store.SQLDriver, "VIBEN_SQL_DRIVER")
	str(&c.Store.DSN, "VIBEN_DATABASE_URL", "DATABASE_URL")
	str(&c.LLM.Provider, "VIBEN_LLM_PROVIDER")
	str(&c.LLM.Model, "VIBEN_LLM_MODEL")
	str(&c.LLM.BaseURL, "VIBEN_LLM_BASE_URL")
	str(&c.Airtable.Token, "AIRTABLE_PAT", "AIRTABLE_TOKEN")
	str(&c.Airtable.BaseID, "AIRTABLE_BASE_ID")
	str(&c.Airtable.TableID, "AIRTABLE_TABLE_ID")
	str(&c.Server.Addr, "VIBEN_ADDR")

	switch c.LLM.Provider {
	case "anthropic", "":
		str(&c.LLM.APIKey, "VIBEN_LLM_API_KEY", "ANTHROPIC_API_KEY")
	case "openai":
		str(&c.LLM.APIKey, "VIBEN_LLM_API_KEY", "OPENAI_API_KEY")
	default:
		str(&c.LLM.APIKey, "VIBEN_LLM_API_KEY")
	}

	if v, ok := lookup("VIBEN_TRANSCRIPT_BUDGET"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VIBEN_TRANSCRIPT_BUDGET: %w", err)
		}
		c.Generation.TranscriptBudget = n
	}
	if v, ok := lookup("VIBEN_STRICT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VIBEN_STRICT: %w", err)
		}
		c.Generation.StrictSequence = b
	}
	return nil
}

// Validate rejects unknown backends and providers.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "file", "loam", "redis", "sql", "memory":
	default:
		return fmt.Errorf("unknown store backend %q (want file, loam, redis, sql or memory)", c.Store.Backend)
	}
	switch c.LLM.Provider {
	case "anthropic", "openai", "ollama":
	default:
		return fmt.Errorf("unknown llm provider %q (want anthropic, openai or ollama)", c.LLM.Provider)
	}
	if c.Store.Backend == "redis" && c.Store.RedisURL == "" {
		return errors.New("redis store requires store.redis_url or REDIS_URL")
	}
	if c.Generation.TranscriptBudget <= 0 {
		return fmt.Errorf("transcript budget must be positive, got %d", c.Generation.TranscriptBudget)
	}
	return nil
}
