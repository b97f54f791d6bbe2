package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/aretw0/viben/pkg/richtext"
)

type sanitizeMiddleware struct {
	next ports.TutorialStore
}

// NewSanitizeMiddleware strips markup outside the inline subset from card
// text before it is written. The caller's tutorial is left untouched.
func NewSanitizeMiddleware() Middleware {
	return func(next ports.TutorialStore) ports.TutorialStore {
		return &sanitizeMiddleware{next: next}
	}
}

func (m *sanitizeMiddleware) Save(ctx context.Context, t *domain.Tutorial) error {
	cloned, err := t.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone tutorial: %w", err)
	}
	for i := range cloned.Cards {
		richtext.SanitizeCard(&cloned.Cards[i])
	}
	return m.next.Save(ctx, cloned)
}

func (m *sanitizeMiddleware) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	return m.next.Load(ctx, id)
}

func (m *sanitizeMiddleware) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	return m.next.List(ctx)
}

func (m *sanitizeMiddleware) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	return m.next.FindBySourceRecordID(ctx, recordID)
}

func (m *sanitizeMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}
