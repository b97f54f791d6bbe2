package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := m.Hooks()
	ctx := context.Background()

	h.OnGenerate(ctx, &domain.GenerationEvent{RecordID: "r1", Duration: 2 * time.Second})
	h.OnGenerate(ctx, &domain.GenerationEvent{RecordID: "r1", Reused: true})
	h.OnGenerate(ctx, &domain.GenerationEvent{RecordID: "r2", Err: errors.New("x")})
	h.OnCardEnter(ctx, &domain.CardEvent{CardType: domain.CardQuiz})
	h.OnQuizAnswer(ctx, &domain.QuizEvent{Correct: true})
	h.OnChoice(ctx, &domain.ChoiceEvent{Store: "pathStore", Tag: "backend"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("generated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("reused")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CardViews.WithLabelValues("quiz")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuizAnswers.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Choices.WithLabelValues("pathStore", "backend")))

	n, err := testutil.GatherAndCount(reg, "viben_generation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(nil)
		NewMetrics(nil)
	})
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := LoggingHooks(logger)
	ctx := context.Background()

	h.OnGenerate(ctx, &domain.GenerationEvent{RecordID: "r1", EventBase: domain.EventBase{TutorialID: "t1"}})
	h.OnGenerate(ctx, &domain.GenerationEvent{RecordID: "r2", Err: errors.New("model down")})
	h.OnChoice(ctx, &domain.ChoiceEvent{Store: "pathStore", Tag: "backend"})

	out := buf.String()
	assert.Contains(t, out, "tutorial ready")
	assert.Contains(t, out, "tutorial_id=t1")
	assert.Contains(t, out, "generation failed")
	assert.Contains(t, out, `err="model down"`)
	assert.Contains(t, out, "tag=backend")
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnCardEnter: func(context.Context, *domain.CardEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnCardEnter: func(context.Context, *domain.CardEvent) { calls = append(calls, "b") },
		OnChoice:    func(context.Context, *domain.ChoiceEvent) { calls = append(calls, "b-choice") },
	}

	h := Combine(a, domain.LifecycleHooks{}, b)
	h.OnCardEnter(context.Background(), &domain.CardEvent{})
	h.OnChoice(context.Background(), &domain.ChoiceEvent{})
	assert.Nil(t, h.OnQuizAnswer)
	assert.Equal(t, []string{"a", "b", "b-choice"}, calls)
}
