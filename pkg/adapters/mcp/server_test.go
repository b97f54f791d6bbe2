package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/ports"
)

type stubRecords struct{}

func (stubRecords) Get(_ context.Context, id string) (*domain.SourceRecord, error) {
	if id != "rec1" {
		return nil, domain.NotFoundError("record", id)
	}
	return &domain.SourceRecord{ID: "rec1", Title: "Claude Skills", Transcript: "skills are folders"}, nil
}

func (stubRecords) List(context.Context, ports.RecordQuery) (*domain.RecordPage, error) {
	return &domain.RecordPage{
		Records: []domain.SourceRecord{{ID: "rec1", EditorTitle: "Claude Skills", Transcript: "long text"}},
		Offset:  "next",
	}, nil
}

func newTestServer(t *testing.T) (*Server, *viben.Pipeline) {
	t.Helper()
	gen := ports.GeneratorFunc(func(context.Context, string, string) (string, error) {
		return `{"id": "claude-skills", "title": "Claude Skills", "cards": [
			{"type": "intro"},
			{"type": "choice", "store": "pathStore", "choices": [{"label": "Dev", "tag": "dev"}]},
			{"type": "celebration"}
		]}`, nil
	})
	p, err := viben.New(viben.WithGenerator(gen), viben.WithRecords(stubRecords{}))
	require.NoError(t, err)
	return NewServer(p), p
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestGenerateAndList(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleGenerate(ctx, callRequest(nil), generateArgs{RecordID: "rec1"})
	require.NoError(t, err)
	assert.Equal(t, GenerateResult{TutorialID: "claude-skills", Title: "Claude Skills", Cards: 3}, res)

	res, err = s.handleGenerate(ctx, callRequest(nil), generateArgs{RecordID: "rec1"})
	require.NoError(t, err)
	assert.True(t, res.Reused)

	_, err = s.handleGenerate(ctx, callRequest(nil), generateArgs{RecordID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.handleGenerate(ctx, callRequest(nil), generateArgs{})
	assert.Error(t, err)

	list, err := s.handleListTutorials(ctx, callRequest(nil), struct{}{})
	require.NoError(t, err)
	require.Len(t, list.Tutorials, 1)
	assert.Equal(t, 3, list.Tutorials[0].CardCount)
}

func TestGetTutorial(t *testing.T) {
	s, p := newTestServer(t)
	ctx := context.Background()
	_, err := p.Generate(ctx, "rec1", viben.GenerateOptions{})
	require.NoError(t, err)

	result, err := s.handleGetTutorial(ctx, callRequest(map[string]any{"id": "claude-skills"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var tut domain.Tutorial
	require.NoError(t, json.Unmarshal([]byte(text.Text), &tut))
	assert.Equal(t, "rec1", tut.Source.AirtableRecordID)

	result, err = s.handleGetTutorial(ctx, callRequest(map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleGetTutorial(ctx, callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestListRecords(t *testing.T) {
	s, _ := newTestServer(t)
	out, err := s.handleListRecords(context.Background(), callRequest(nil), listRecordsArgs{})
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "Claude Skills", out.Records[0].Title)
	assert.Equal(t, "next", out.Offset)
}

func TestPlayStep(t *testing.T) {
	s, p := newTestServer(t)
	ctx := context.Background()
	_, err := p.Generate(ctx, "rec1", viben.GenerateOptions{})
	require.NoError(t, err)

	view, err := s.handlePlayStep(ctx, callRequest(nil), playStepArgs{TutorialID: "claude-skills"})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, domain.CardIntro, view.Card.Type)

	view, err = s.handlePlayStep(ctx, callRequest(nil), playStepArgs{
		TutorialID: "claude-skills",
		State:      &view.State,
		Event:      &playback.Event{Type: playback.EventAdvance},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)

	view, err = s.handlePlayStep(ctx, callRequest(nil), playStepArgs{
		TutorialID: "claude-skills",
		State:      &view.State,
		Event:      &playback.Event{Type: playback.EventChoice, Tag: "dev"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Index, "choices advance immediately")
	assert.True(t, view.Terminal)
	assert.Equal(t, "dev", view.State.Choices["pathStore"])
	assert.Nil(t, view.State.Pending)

	_, err = s.handlePlayStep(ctx, callRequest(nil), playStepArgs{
		TutorialID: "claude-skills",
		Event:      &playback.Event{Type: "dance"},
	})
	assert.ErrorIs(t, err, playback.ErrUnknownEvent)

	_, err = s.handlePlayStep(ctx, callRequest(nil), playStepArgs{TutorialID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
