package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/observability"
	"github.com/aretw0/viben/pkg/ports"
)

type metricsMiddleware struct {
	next    ports.TutorialStore
	metrics *observability.Metrics
}

// NewMetricsMiddleware counts and times store operations.
func NewMetricsMiddleware(m *observability.Metrics) Middleware {
	return func(next ports.TutorialStore) ports.TutorialStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	m.metrics.StoreOps.WithLabelValues(op, result).Inc()
	m.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metricsMiddleware) Save(ctx context.Context, t *domain.Tutorial) error {
	start := time.Now()
	err := m.next.Save(ctx, t)
	m.observe("save", start, err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, id string) (*domain.Tutorial, error) {
	start := time.Now()
	t, err := m.next.Load(ctx, id)
	m.observe("load", start, err)
	return t, err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]domain.TutorialSummary, error) {
	start := time.Now()
	out, err := m.next.List(ctx)
	m.observe("list", start, err)
	return out, err
}

func (m *metricsMiddleware) FindBySourceRecordID(ctx context.Context, recordID string) (*domain.Tutorial, error) {
	start := time.Now()
	t, err := m.next.FindBySourceRecordID(ctx, recordID)
	m.observe("find", start, err)
	return t, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.observe("delete", start, err)
	return err
}
