package dsl

import (
	"testing"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_FullTutorial(t *testing.T) {
	b := New("cursor-agent-mode", "Cursor Agent Mode").
		Tool("cursor").
		Tags("cursor", "agents").
		Difficulty(domain.Beginner).
		Minutes(5)

	b.Intro("Meet Agent Mode").Emoji("👋").CTA("Let's go")
	b.Concept("What it does").
		Body("The agent <strong>edits files</strong>.").
		Diagram("Prompt to change", "You", "Agent", "Files").Highlight(1).
		Analogy("🧑‍🍳", "Like a sous-chef").
		Read("Long form").
		Watch("https://www.youtube.com/embed/dQw4w9WgXcQ", "1:00", "2:00")
	b.Action("Try it").
		Code("Terminal", "cursor .", "Opens the project").
		Help("Where?", "Top right").
		Troubleshoot("Not found", "command not found", "Install the CLI")
	b.Quiz("Who edits the files?").
		Option("You", false).
		Option("The agent", true).
		Feedback("Yes!", "Not quite")
	b.Choice("What next?", "pathStore").
		Pick("🛠", "Backend", "APIs", "backend").
		Pick("🎨", "Frontend", "UI", "frontend")
	b.Celebration("Done!").Stats()

	tut, err := b.Build(domain.StrictSequence())
	require.NoError(t, err)

	require.Len(t, tut.Cards, 6)
	assert.Equal(t, domain.CardIntro, tut.Cards[0].Type)
	assert.Equal(t, []int{1}, tut.Cards[1].Diagram.Highlight)
	assert.Equal(t, []domain.Modality{domain.ModalityRead, domain.ModalityWatch}, tut.Cards[1].Modalities.Offered())
	assert.Equal(t, "cursor .", tut.Cards[2].Code)
	assert.Equal(t, 1, tut.Cards[3].CorrectOption())
	assert.Equal(t, "pathStore", tut.Cards[4].Store)
	assert.Len(t, tut.Cards[4].Choices, 2)
	assert.True(t, tut.Cards[5].Stats)
	assert.Equal(t, 5, tut.EstimatedMinutes)
}

func TestBuilder_BuildIsACopy(t *testing.T) {
	b := New("x", "X")
	b.Intro("hi")
	first := b.MustBuild()

	b.Celebration("bye")
	second := b.MustBuild()

	assert.Len(t, first.Cards, 1)
	assert.Len(t, second.Cards, 2)
}

func TestBuilder_InvalidQuiz(t *testing.T) {
	b := New("x", "X")
	b.Quiz("?").Option("a", true).Option("b", true)

	_, err := b.Build()
	require.ErrorIs(t, err, domain.ErrShape)
	shapes := domain.ShapeErrors(err)
	require.NotEmpty(t, shapes)
	assert.Equal(t, 0, shapes[0].Card)

	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuilder_RequiresCards(t *testing.T) {
	_, err := New("x", "X").Build()
	assert.ErrorIs(t, err, domain.ErrShape)
}

func TestCardBuilder_SurvivesGrowth(t *testing.T) {
	b := New("x", "X")
	first := b.Intro("one")
	for i := 0; i < 20; i++ {
		b.Concept("filler")
	}
	first.Body("late edit")

	tut := b.MustBuild()
	assert.Equal(t, "late edit", tut.Cards[0].Body)
}
