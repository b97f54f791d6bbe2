package ports

import (
	"context"

	"github.com/aretw0/viben/pkg/domain"
)

// TutorialStore defines the interface for persisting generated tutorials.
// Implementations sanitize ids with SanitizeID before using them as keys.
type TutorialStore interface {
	// Save persists the tutorial under its id, replacing any previous version.
	Save(ctx context.Context, tutorial *domain.Tutorial) error

	// Load retrieves a tutorial by id.
	// Returns an error matching domain.ErrNotFound if the id is unknown.
	Load(ctx context.Context, id string) (*domain.Tutorial, error)

	// List returns the summaries of every stored tutorial, newest first.
	List(ctx context.Context) ([]domain.TutorialSummary, error)

	// FindBySourceRecordID returns the tutorial generated from the given record.
	// Returns an error matching domain.ErrNotFound if none exists.
	FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error)

	// Delete removes a tutorial. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Update replaces an existing tutorial, failing with domain.ErrNotFound when
// no tutorial is stored under its id.
func Update(ctx context.Context, store TutorialStore, tutorial *domain.Tutorial) error {
	if _, err := store.Load(ctx, tutorial.ID); err != nil {
		return err
	}
	return store.Save(ctx, tutorial)
}
