package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.TutorialStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store operation at debug level and every
// failure other than not-found at warn level.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.TutorialStore) ports.TutorialStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, key string, start time.Time, err error) {
	attrs := []any{"op", op, "key", key, "duration", time.Since(start)}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		m.logger.WarnContext(ctx, "store operation failed", append(attrs, "err", err)...)
		return
	}
	m.logger.DebugContext(ctx, "store operation", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, t *domain.Tutorial) error {
	start := time.Now()
	err := m.next.Save(ctx, t)
	m.log(ctx, "save", t.ID, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	start := time.Now()
	t, err := m.next.Load(ctx, id)
	m.log(ctx, "load", id, start, err)
	return t, err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	start := time.Now()
	out, err := m.next.List(ctx)
	m.log(ctx, "list", "", start, err)
	return out, err
}

func (m *loggingMiddleware) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	start := time.Now()
	t, err := m.next.FindBySourceRecordID(ctx, recordID)
	m.log(ctx, "find", recordID, start, err)
	return t, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.log(ctx, "delete", id, start, err)
	return err
}
