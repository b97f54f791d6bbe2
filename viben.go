package viben

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/viben/internal/logging"
	"github.com/aretw0/viben/pkg/adapters/memory"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/generation"
	"github.com/aretw0/viben/pkg/keylock"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/aretw0/viben/pkg/prompt"
	"github.com/aretw0/viben/pkg/tutor"
)

var (
	ErrNoGenerator    = errors.New("no generator configured")
	ErrNoRecordSource = errors.New("no record source configured")
	ErrNoChatter      = errors.New("no chat model configured")
)

// Pipeline is the high-level entry point of the library.
// It turns source records into stored tutorials and opens them for playback.
type Pipeline struct {
	store     ports.TutorialStore
	generator ports.Generator
	chatter   ports.Chatter
	records   ports.RecordSource
	locker    ports.DistributedLocker
	locks     *keylock.Manager
	builder   prompt.Builder
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	validate  []domain.ValidateOption
	now       func() time.Time
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithStore sets the tutorial store (default: in-memory).
func WithStore(s ports.TutorialStore) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

// WithGenerator sets the text-generation collaborator.
func WithGenerator(g ports.Generator) Option {
	return func(p *Pipeline) {
		p.generator = g
	}
}

// WithChatter sets the tutor chat collaborator. When unset, a generator that
// also implements ports.Chatter is used.
func WithChatter(c ports.Chatter) Option {
	return func(p *Pipeline) {
		p.chatter = c
	}
}

// WithRecords sets the source-record collaborator.
func WithRecords(r ports.RecordSource) Option {
	return func(p *Pipeline) {
		p.records = r
	}
}

// WithLocker extends the per-record generation lock across processes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(p *Pipeline) {
		p.locker = l
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks for generation and playback.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithStrictSequence rejects tutorials that do not open with an intro card
// and close with a celebration card.
func WithStrictSequence() Option {
	return func(p *Pipeline) {
		p.validate = append(p.validate, domain.StrictSequence())
	}
}

// WithTranscriptBudget overrides the transcript size sent to the model.
func WithTranscriptBudget(n int) Option {
	return func(p *Pipeline) {
		p.builder.TranscriptBudget = n
	}
}

// New initializes a Pipeline.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		builder: prompt.Builder{TranscriptBudget: prompt.DefaultTranscriptBudget},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.store == nil {
		p.store = memory.NewStore()
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.chatter == nil {
		if c, ok := p.generator.(ports.Chatter); ok {
			p.chatter = c
		}
	}
	if p.builder.TranscriptBudget <= 0 {
		return nil, fmt.Errorf("transcript budget must be positive, got %d", p.builder.TranscriptBudget)
	}

	lockOpts := []keylock.Option{keylock.WithLogger(p.logger)}
	if p.locker != nil {
		lockOpts = append(lockOpts, keylock.WithLocker(p.locker))
	}
	p.locks = keylock.New(lockOpts...)
	return p, nil
}

// Store returns the underlying tutorial store.
func (p *Pipeline) Store() ports.TutorialStore {
	return p.store
}

// GenerateOptions tunes a single generation.
type GenerateOptions struct {
	// Force regenerates even if a tutorial for the record already exists.
	Force bool
}

// GenerateResult is the outcome of a generation.
type GenerateResult struct {
	Tutorial *domain.Tutorial
	// Reused is true when an existing tutorial was returned without calling the model.
	Reused bool
}

// Generate produces the tutorial for a source record and saves it.
// At most one generation per record runs at a time; concurrent callers wait
// and then reuse the saved result unless Force is set.
func (p *Pipeline) Generate(ctx context.Context, recordID string, opts GenerateOptions) (*GenerateResult, error) {
	if recordID == "" {
		return nil, domain.NewShapeError("recordId", "is required")
	}
	if p.generator == nil {
		return nil, ErrNoGenerator
	}
	if p.records == nil {
		return nil, ErrNoRecordSource
	}

	start := p.now()
	var res *GenerateResult
	err := p.locks.WithLock(ctx, "generate:"+recordID, func(ctx context.Context) error {
		var err error
		res, err = p.generate(ctx, recordID, opts)
		return err
	})

	if p.hooks.OnGenerate != nil {
		ev := &domain.GenerationEvent{
			EventBase: domain.EventBase{Timestamp: p.now(), Type: domain.EventGenerate},
			RecordID:  recordID,
			Duration:  p.now().Sub(start),
			Err:       err,
		}
		if res != nil {
			ev.TutorialID = res.Tutorial.ID
			ev.Reused = res.Reused
		}
		p.hooks.OnGenerate(ctx, ev)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) generate(ctx context.Context, recordID string, opts GenerateOptions) (*GenerateResult, error) {
	if !opts.Force {
		existing, err := p.store.FindBySourceRecordID(ctx, recordID)
		if err == nil {
			p.logger.Debug("reusing tutorial", "record_id", recordID, "tutorial_id", existing.ID)
			return &GenerateResult{Tutorial: existing, Reused: true}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	rec, err := p.records.Get(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("fetch record %s: %w", recordID, err)
	}

	userPrompt, err := p.builder.Build(rec)
	if err != nil {
		return nil, err
	}

	p.logger.Info("generating tutorial", "record_id", recordID, "prompt_bytes", len(userPrompt))
	text, err := p.generator.Generate(ctx, prompt.SystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}

	t, err := generation.Parse(text, p.validate...)
	if err != nil {
		return nil, err
	}
	generation.Backfill(t, rec)

	if err := p.store.Save(ctx, t); err != nil {
		return nil, err
	}
	return &GenerateResult{Tutorial: t}, nil
}

// Save validates and stores a tutorial.
func (p *Pipeline) Save(ctx context.Context, t *domain.Tutorial) error {
	if err := t.Validate(p.validate...); err != nil {
		return err
	}
	return p.store.Save(ctx, t)
}

// Update validates and replaces an existing tutorial.
func (p *Pipeline) Update(ctx context.Context, t *domain.Tutorial) error {
	if err := t.Validate(p.validate...); err != nil {
		return err
	}
	return ports.Update(ctx, p.store, t)
}

// Load returns a stored tutorial.
func (p *Pipeline) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	return p.store.Load(ctx, id)
}

// List returns stored tutorial summaries, newest first.
func (p *Pipeline) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	return p.store.List(ctx)
}

// FindBySourceRecordID returns the tutorial generated from a record.
func (p *Pipeline) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	return p.store.FindBySourceRecordID(ctx, recordID)
}

// Delete removes a stored tutorial.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	return p.store.Delete(ctx, id)
}

// Record fetches one source record.
func (p *Pipeline) Record(ctx context.Context, id string) (*domain.SourceRecord, error) {
	if p.records == nil {
		return nil, ErrNoRecordSource
	}
	return p.records.Get(ctx, id)
}

// Records lists source records.
func (p *Pipeline) Records(ctx context.Context, q ports.RecordQuery) (*domain.RecordPage, error) {
	if p.records == nil {
		return nil, ErrNoRecordSource
	}
	return p.records.List(ctx, q)
}

// Play loads a tutorial and opens a playback session at its first card.
// Pipeline hooks are wired into the session; opts may override them.
func (p *Pipeline) Play(ctx context.Context, id string, opts ...playback.Option) (*playback.Session, error) {
	return p.Resume(ctx, id, playback.State{}, opts...)
}

// Resume loads a tutorial and restores a playback session from a snapshot.
func (p *Pipeline) Resume(ctx context.Context, id string, st playback.State, opts ...playback.Option) (*playback.Session, error) {
	t, err := p.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	base := []playback.Option{
		playback.WithContext(ctx),
		playback.WithHooks(p.hooks),
	}
	return playback.Restore(t, st, append(base, opts...)...)
}

// Ask forwards a learner question to the tutor.
func (p *Pipeline) Ask(ctx context.Context, cc tutor.CardContext, messages []domain.ChatMessage) (string, error) {
	if p.chatter == nil {
		return "", ErrNoChatter
	}
	return tutor.New(p.chatter).Ask(ctx, cc, messages)
}
