package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/viben/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log each event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerate: func(ctx context.Context, e *domain.GenerationEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "generation failed",
					"record_id", e.RecordID,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "tutorial ready",
				"record_id", e.RecordID,
				"tutorial_id", e.TutorialID,
				"reused", e.Reused,
				"duration", e.Duration,
			)
		},
		OnCardEnter: func(ctx context.Context, e *domain.CardEvent) {
			logger.DebugContext(ctx, "card_enter",
				"tutorial_id", e.TutorialID,
				"index", e.Index,
				"type", e.CardType,
			)
		},
		OnQuizAnswer: func(ctx context.Context, e *domain.QuizEvent) {
			logger.DebugContext(ctx, "quiz_answer",
				"tutorial_id", e.TutorialID,
				"index", e.Index,
				"correct", e.Correct,
			)
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			logger.DebugContext(ctx, "choice",
				"tutorial_id", e.TutorialID,
				"store", e.Store,
				"tag", e.Tag,
			)
		},
	}
}

// Combine merges hook sets; each callback runs in argument order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnGenerate = chain(out.OnGenerate, h.OnGenerate)
		out.OnCardEnter = chain(out.OnCardEnter, h.OnCardEnter)
		out.OnQuizAnswer = chain(out.OnQuizAnswer, h.OnQuizAnswer)
		out.OnChoice = chain(out.OnChoice, h.OnChoice)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
