package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractTutorial builds a small valid tutorial for store contract checks.
func ContractTutorial(id, recordID string) *domain.Tutorial {
	return &domain.Tutorial{
		ID:               id,
		Title:            "Contract " + id,
		Description:      "A tutorial used by the store contract.",
		Tool:             "contract",
		Tags:             []string{"contract", "test"},
		Difficulty:       domain.Intermediate,
		EstimatedMinutes: 5,
		Source: domain.Source{
			AirtableRecordID: recordID,
			SourceURL:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Author:           "Contract Author",
		},
		Cards: []domain.Card{
			{Type: domain.CardIntro, Emoji: "👋", Title: "Hello", Body: "<strong>Start</strong>", CTA: "Let's go"},
			{Type: domain.CardQuiz, Question: "Pick one", Options: []domain.QuizOption{
				{Text: "wrong", Correct: false},
				{Text: "right", Correct: true},
			}},
			{
				Type:  domain.CardConcept,
				Title: "Idea",
				Diagram: &domain.Diagram{
					Nodes:     []string{"a", "b"},
					Highlight: []int{1},
				},
				Modalities: &domain.Modalities{
					Watch: &domain.WatchModality{VideoURL: "https://www.youtube.com/embed/dQw4w9WgXcQ", StartTime: "1:30"},
				},
			},
			{Type: domain.CardCelebration, Stats: true},
		},
	}
}

// RunTutorialStoreContract runs a suite of tests to verify that a TutorialStore
// implementation adheres to the defined interface contract.
func RunTutorialStoreContract(t *testing.T, store TutorialStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")
	id := "contract-" + suffix

	t.Run("Save and Load", func(t *testing.T) {
		tut := ContractTutorial(id, "rec-"+suffix)

		require.NoError(t, store.Save(ctx, tut), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, tut, loaded, "round trip must be structurally equal")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+suffix)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Sanitized Keys", func(t *testing.T) {
		loaded, err := store.Load(ctx, id+"/;")
		require.NoError(t, err)
		assert.Equal(t, id, loaded.ID)

		_, err = store.Load(ctx, "../..")
		assert.ErrorIs(t, err, domain.ErrShape)
	})

	t.Run("Find By Source Record", func(t *testing.T) {
		found, err := store.FindBySourceRecordID(ctx, "rec-"+suffix)
		require.NoError(t, err)
		assert.Equal(t, id, found.ID)

		_, err = store.FindBySourceRecordID(ctx, "rec-missing-"+suffix)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Find By Source Record After Delete", func(t *testing.T) {
		rec := "rec-shared-" + suffix
		first := id + "-first"
		second := id + "-second"
		require.NoError(t, store.Save(ctx, ContractTutorial(first, rec)))
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, store.Save(ctx, ContractTutorial(second, rec)))
		defer func() { _ = store.Delete(ctx, first) }()

		require.NoError(t, store.Delete(ctx, second))

		found, err := store.FindBySourceRecordID(ctx, rec)
		require.NoError(t, err, "a surviving tutorial for the record must still be found")
		assert.Equal(t, first, found.ID)
	})

	t.Run("Update", func(t *testing.T) {
		tut := ContractTutorial(id, "rec-"+suffix)
		tut.Title = "Updated"
		require.NoError(t, Update(ctx, store, tut))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Updated", loaded.Title)

		err = Update(ctx, store, ContractTutorial("never-saved-"+suffix, ""))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List Newest First", func(t *testing.T) {
		older := fmt.Sprintf("%s-older", id)
		newer := fmt.Sprintf("%s-newer", id)
		require.NoError(t, store.Save(ctx, ContractTutorial(older, "")))
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, store.Save(ctx, ContractTutorial(newer, "")))

		defer func() {
			_ = store.Delete(ctx, older)
			_ = store.Delete(ctx, newer)
		}()

		summaries, err := store.List(ctx)
		require.NoError(t, err)

		pos := map[string]int{}
		for i, s := range summaries {
			pos[s.ID] = i
		}
		require.Contains(t, pos, older)
		require.Contains(t, pos, newer)
		assert.Less(t, pos[newer], pos[older], "newer tutorial must be listed first")

		s := summaries[pos[newer]]
		assert.Equal(t, "Contract "+newer, s.Title)
		assert.Equal(t, "contract", s.Tool)
		assert.Equal(t, domain.Intermediate, s.Difficulty)
		assert.Equal(t, 4, s.CardCount)
		assert.False(t, s.CreatedAt.IsZero())
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load after Delete should return ErrNotFound")

		_, err = store.FindBySourceRecordID(ctx, "rec-"+suffix)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})
}
