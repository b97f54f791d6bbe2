package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/internal/config"
	"github.com/aretw0/viben/pkg/adapters/airtable"
	"github.com/aretw0/viben/pkg/adapters/file"
	httpadapter "github.com/aretw0/viben/pkg/adapters/http"
	"github.com/aretw0/viben/pkg/adapters/llm"
	"github.com/aretw0/viben/pkg/adapters/loam"
	"github.com/aretw0/viben/pkg/adapters/memory"
	"github.com/aretw0/viben/pkg/adapters/redis"
	"github.com/aretw0/viben/pkg/adapters/sql"
	"github.com/aretw0/viben/pkg/observability"
	"github.com/aretw0/viben/pkg/persistence/middleware"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App bundles a configured Pipeline with the collaborators the commands share.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pipeline *viben.Pipeline
	Registry *prometheus.Registry
	Streams  *httpadapter.StreamManager

	closers []func() error
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewApp wires cfg into a Pipeline: the store with its middleware chain,
// the optional distributed locker, the LLM client, the Airtable record
// source, metrics and lifecycle hooks.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Streams:  httpadapter.NewStreamManager(logger),
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(app.Registry)

	store, locker, err := app.openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	mws := []middleware.Middleware{
		middleware.NewLoggingMiddleware(logger),
		middleware.NewMetricsMiddleware(metrics),
	}
	if cfg.Store.Sanitize {
		mws = append(mws, middleware.NewSanitizeMiddleware())
	}

	opts := []viben.Option{
		viben.WithStore(middleware.Chain(store, mws...)),
		viben.WithLogger(logger),
		viben.WithTranscriptBudget(cfg.Generation.TranscriptBudget),
		viben.WithLifecycleHooks(observability.Combine(
			observability.LoggingHooks(logger),
			metrics.Hooks(),
			app.Streams.Hooks(),
		)),
	}
	if locker != nil {
		opts = append(opts, viben.WithLocker(locker))
	}
	if cfg.Generation.StrictSequence {
		opts = append(opts, viben.WithStrictSequence())
	}

	client, err := newLLM(cfg.LLM)
	if err != nil {
		app.Close()
		return nil, err
	}
	if client != nil {
		logger.Debug("llm configured", "provider", client.Name())
		opts = append(opts, viben.WithGenerator(client), viben.WithChatter(client))
	}

	if cfg.Airtable.Token != "" {
		aopts := []airtable.Option{
			airtable.WithTable(cfg.Airtable.BaseID, cfg.Airtable.TableID),
			airtable.WithLogger(logger),
		}
		if cfg.Airtable.BaseURL != "" {
			aopts = append(aopts, airtable.WithBaseURL(cfg.Airtable.BaseURL))
		}
		opts = append(opts, viben.WithRecords(airtable.New(cfg.Airtable.Token, aopts...)))
	}

	p, err := viben.New(opts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error initializing pipeline: %w", err)
	}
	app.Pipeline = p
	return app, nil
}

func (a *App) openStore(sc config.StoreConfig) (ports.TutorialStore, ports.DistributedLocker, error) {
	switch strings.ToLower(sc.Backend) {
	case "", "file":
		return file.New(sc.Dir, file.WithLogger(a.Logger)), nil, nil
	case "memory":
		return memory.NewStore(), nil, nil
	case "loam":
		ls, err := loam.New(sc.Dir, loam.WithLogger(a.Logger))
		if err != nil {
			return nil, nil, err
		}
		return ls, nil, nil
	case "redis":
		rs, err := redis.NewFromURL(sc.RedisURL, redis.WithPrefix(sc.RedisPrefix))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		return rs, redis.NewLocker(rs.Client(), sc.RedisPrefix+"lock:"), nil
	case "sql":
		ss, err := sql.Open(sc.SQLDriver, sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, ss.Close)
		return ss, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}

// newLLM returns nil when the provider needs a key and none is configured,
// so read-only commands still work.
func newLLM(lc config.LLMConfig) (llm.Client, error) {
	if lc.APIKey == "" && !strings.EqualFold(lc.Provider, llm.ProviderOllama) {
		return nil, nil
	}
	return llm.New(lc.Provider, llm.Config{
		APIKey:    lc.APIKey,
		Model:     lc.Model,
		BaseURL:   lc.BaseURL,
		MaxTokens: lc.MaxTokens,
	})
}
