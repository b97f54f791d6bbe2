package viben_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/pkg/adapters/memory"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/aretw0/viben/pkg/prompt"
	"github.com/aretw0/viben/pkg/tutor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	records map[string]*domain.SourceRecord
}

func (f *fakeRecords) Get(_ context.Context, id string) (*domain.SourceRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.NotFoundError("record", id)
	}
	return rec, nil
}

func (f *fakeRecords) List(context.Context, ports.RecordQuery) (*domain.RecordPage, error) {
	page := &domain.RecordPage{}
	for _, r := range f.records {
		page.Records = append(page.Records, *r)
	}
	return page, nil
}

func newRecords() *fakeRecords {
	return &fakeRecords{records: map[string]*domain.SourceRecord{
		"rec1": {ID: "rec1", Title: "Cursor Agent Mode", Author: "Jane", SourceURL: "https://youtu.be/dQw4w9WgXcQ", Transcript: strings.Repeat("x", 9000)},
		"rec2": {ID: "rec2", Title: "Claude Skills", Author: "Sam"},
		"bad":  {ID: "bad", Title: "Produces garbage"},
	}}
}

func tutorialJSON(id string) string {
	return "```json\n" + fmt.Sprintf(`{
		"id": %q, "title": "T %s", "tool": "cursor", "tags": [], "difficulty": "beginner",
		"source": {},
		"cards": [
			{"type": "intro", "title": "Hi"},
			{"type": "quiz", "question": "?", "options": [{"text": "a", "correct": true}, {"text": "b", "correct": false}]},
			{"type": "choice", "store": "pathStore", "choices": [{"label": "Backend", "tag": "backend"}]},
			{"type": "celebration", "stats": true}
		]
	}`, id, id) + "\n```"
}

type fakeModel struct {
	calls   atomic.Int32
	prompts []string
	mu      sync.Mutex
	delay   time.Duration
}

func (m *fakeModel) Generate(_ context.Context, system, user string) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.prompts = append(m.prompts, user)
	m.mu.Unlock()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if !strings.Contains(system, "tutorial") {
		return "", errors.New("missing system prompt")
	}
	switch {
	case strings.Contains(user, "Record ID:** rec1"):
		return tutorialJSON("cursor-agent-mode"), nil
	case strings.Contains(user, "Record ID:** rec2"):
		return tutorialJSON("claude-skills"), nil
	default:
		return "sorry, I cannot help with that", nil
	}
}

func (m *fakeModel) Chat(_ context.Context, system string, msgs []domain.ChatMessage) (string, error) {
	return "echo: " + msgs[len(msgs)-1].Content, nil
}

func newPipeline(t *testing.T, opts ...viben.Option) (*viben.Pipeline, *fakeModel) {
	t.Helper()
	model := &fakeModel{}
	base := []viben.Option{
		viben.WithRecords(newRecords()),
		viben.WithGenerator(model),
		viben.WithStore(memory.NewStore()),
	}
	p, err := viben.New(append(base, opts...)...)
	require.NoError(t, err)
	return p, model
}

func TestGenerate(t *testing.T) {
	var events []*domain.GenerationEvent
	p, model := newPipeline(t, viben.WithLifecycleHooks(domain.LifecycleHooks{
		OnGenerate: func(_ context.Context, e *domain.GenerationEvent) { events = append(events, e) },
	}))
	ctx := context.Background()

	res, err := p.Generate(ctx, "rec1", viben.GenerateOptions{})
	require.NoError(t, err)
	assert.False(t, res.Reused)
	assert.Equal(t, "cursor-agent-mode", res.Tutorial.ID)
	assert.Equal(t, "rec1", res.Tutorial.Source.AirtableRecordID)
	assert.Equal(t, "Jane", res.Tutorial.Source.Author)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", res.Tutorial.Source.ThumbnailImage)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], strings.Repeat("x", 8000)+prompt.TruncationMarker)

	stored, err := p.Load(ctx, "cursor-agent-mode")
	require.NoError(t, err)
	assert.Equal(t, res.Tutorial, stored)

	again, err := p.Generate(ctx, "rec1", viben.GenerateOptions{})
	require.NoError(t, err)
	assert.True(t, again.Reused)
	assert.EqualValues(t, 1, model.calls.Load())

	_, err = p.Generate(ctx, "rec1", viben.GenerateOptions{Force: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, model.calls.Load())

	require.Len(t, events, 3)
	assert.False(t, events[0].Reused)
	assert.True(t, events[1].Reused)
	assert.Equal(t, "cursor-agent-mode", events[1].TutorialID)
}

func TestGenerate_Errors(t *testing.T) {
	var failed []error
	p, _ := newPipeline(t, viben.WithLifecycleHooks(domain.LifecycleHooks{
		OnGenerate: func(_ context.Context, e *domain.GenerationEvent) {
			if e.Err != nil {
				failed = append(failed, e.Err)
			}
		},
	}))
	ctx := context.Background()

	_, err := p.Generate(ctx, "bad", viben.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = p.Generate(ctx, "missing", viben.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = p.Generate(ctx, "", viben.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrShape)

	assert.Len(t, failed, 2, "validation of the request happens before the hook")

	list, err := p.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "failed generations store nothing")
}

func TestGenerate_MissingCollaborators(t *testing.T) {
	p, err := viben.New()
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "rec1", viben.GenerateOptions{})
	assert.ErrorIs(t, err, viben.ErrNoGenerator)

	p, err = viben.New(viben.WithGenerator(&fakeModel{}))
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), "rec1", viben.GenerateOptions{})
	assert.ErrorIs(t, err, viben.ErrNoRecordSource)

	_, err = viben.New(viben.WithTranscriptBudget(-1))
	assert.Error(t, err)
}

func TestGenerate_StrictSequence(t *testing.T) {
	model := ports.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return `{"id": "loose", "title": "Loose", "cards": [{"type": "concept"}]}`, nil
	})

	loose, err := viben.New(viben.WithRecords(newRecords()), viben.WithGenerator(model))
	require.NoError(t, err)
	_, err = loose.Generate(context.Background(), "rec2", viben.GenerateOptions{})
	require.NoError(t, err)

	strict, err := viben.New(viben.WithRecords(newRecords()), viben.WithGenerator(model), viben.WithStrictSequence())
	require.NoError(t, err)
	_, err = strict.Generate(context.Background(), "rec2", viben.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrShape)
}

func TestGenerate_OneInFlightPerRecord(t *testing.T) {
	p, model := newPipeline(t)
	model.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	reused := atomic.Int32{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Generate(context.Background(), "rec1", viben.GenerateOptions{})
			assert.NoError(t, err)
			if err == nil && res.Reused {
				reused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, model.calls.Load())
	assert.EqualValues(t, 4, reused.Load())
}

func TestGenerateBatch(t *testing.T) {
	p, model := newPipeline(t)
	results := p.GenerateBatch(context.Background(), []string{"rec1", "bad", "rec2", "missing"}, viben.BatchOptions{Concurrency: 2})

	require.Len(t, results, 4)
	assert.Equal(t, "rec1", results[0].RecordID)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "cursor-agent-mode", results[0].Tutorial.ID)
	assert.ErrorIs(t, results[1].Err, domain.ErrParse)
	assert.NoError(t, results[2].Err)
	assert.ErrorIs(t, results[3].Err, domain.ErrNotFound)
	assert.EqualValues(t, 3, model.calls.Load())
}

func TestGenerateBatch_Cancelled(t *testing.T) {
	p, _ := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.GenerateBatch(ctx, []string{"rec1", "rec2"}, viben.BatchOptions{Delay: time.Millisecond})
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestSaveUpdateDelete(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()
	tut := ports.ContractTutorial("manual", "rec9")

	err := p.Update(ctx, tut)
	assert.ErrorIs(t, err, domain.ErrNotFound, "update requires an existing tutorial")

	require.NoError(t, p.Save(ctx, tut))
	tut.Title = "Renamed"
	require.NoError(t, p.Update(ctx, tut))

	found, err := p.FindBySourceRecordID(ctx, "rec9")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)

	invalid := ports.ContractTutorial("manual", "rec9")
	invalid.Cards = nil
	assert.ErrorIs(t, p.Save(ctx, invalid), domain.ErrShape)

	require.NoError(t, p.Delete(ctx, "manual"))
	_, err = p.Load(ctx, "manual")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlayAndResume(t *testing.T) {
	var entered []int
	var answers []bool
	p, _ := newPipeline(t, viben.WithLifecycleHooks(domain.LifecycleHooks{
		OnCardEnter:  func(_ context.Context, e *domain.CardEvent) { entered = append(entered, e.Index) },
		OnQuizAnswer: func(_ context.Context, e *domain.QuizEvent) { answers = append(answers, e.Correct) },
	}))
	ctx := context.Background()
	res, err := p.Generate(ctx, "rec1", viben.GenerateOptions{})
	require.NoError(t, err)

	sess, err := p.Play(ctx, res.Tutorial.ID, playback.WithAutoAdvance(0))
	require.NoError(t, err)
	require.True(t, sess.Advance())
	assert.False(t, sess.Advance(), "quiz gates advance")

	ok, err := sess.AnswerQuiz(1, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, sess.Advance())

	pending, err := sess.MakeChoice("pathStore", "backend")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Zero(t, pending.Delay)
	snapshot := sess.State()

	require.True(t, sess.Resolve(*pending))
	assert.True(t, sess.IsTerminal())
	assert.Equal(t, []int{1, 2, 3}, entered)
	assert.Equal(t, []bool{true}, answers)

	resumed, err := p.Resume(ctx, res.Tutorial.ID, snapshot)
	require.NoError(t, err)
	assert.Equal(t, 2, resumed.Index())
	tag, ok := resumed.Choice("pathStore")
	assert.True(t, ok)
	assert.Equal(t, "backend", tag)
	assert.True(t, resumed.Resolve(*pending), "pending advance survives the snapshot")

	_, err = p.Play(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAsk(t *testing.T) {
	p, _ := newPipeline(t)
	cc := tutor.CardContext{Type: domain.CardConcept, Title: "Agents", TutorialTitle: "Cursor"}

	reply, err := p.Ask(context.Background(), cc, []domain.ChatMessage{
		{Role: domain.RoleBot, Content: "Ask me anything"},
		{Role: domain.RoleUser, Content: "what is an agent?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "echo: what is an agent?", reply)

	_, err = p.Ask(context.Background(), cc, nil)
	assert.ErrorIs(t, err, tutor.ErrNoMessages)

	bare, err := viben.New(viben.WithGenerator(ports.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return "", nil
	})))
	require.NoError(t, err)
	_, err = bare.Ask(context.Background(), cc, []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, viben.ErrNoChatter)
}
