package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for the tutorial pipeline.
type Metrics struct {
	Generations        *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	CardViews          *prometheus.CounterVec
	QuizAnswers        *prometheus.CounterVec
	Choices            *prometheus.CounterVec
	StoreOps           *prometheus.CounterVec
	StoreDuration      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viben_generations_total",
				Help: "Tutorial generation attempts by outcome",
			},
			[]string{"outcome"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "viben_generation_duration_seconds",
				Help:    "Duration of generate calls that reached the model",
				Buckets: []float64{1, 5, 10, 20, 40, 60, 90, 120},
			},
		),
		CardViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viben_card_views_total",
				Help: "Cards entered during playback",
			},
			[]string{"card_type"},
		),
		QuizAnswers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viben_quiz_answers_total",
				Help: "Quiz answers recorded during playback",
			},
			[]string{"correct"},
		),
		Choices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viben_choices_total",
				Help: "Choices recorded during playback",
			},
			[]string{"store", "tag"},
		),
		StoreOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viben_store_operations_total",
				Help: "Tutorial store operations by result",
			},
			[]string{"op", "result"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viben_store_operation_duration_seconds",
				Help:    "Duration of tutorial store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.Generations,
			m.GenerationDuration,
			m.CardViews,
			m.QuizAnswers,
			m.Choices,
			m.StoreOps,
			m.StoreDuration,
		)
	}
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerate: func(_ context.Context, e *domain.GenerationEvent) {
			switch {
			case e.Err != nil:
				m.Generations.WithLabelValues("failed").Inc()
			case e.Reused:
				m.Generations.WithLabelValues("reused").Inc()
				return
			default:
				m.Generations.WithLabelValues("generated").Inc()
			}
			m.GenerationDuration.Observe(e.Duration.Seconds())
		},
		OnCardEnter: func(_ context.Context, e *domain.CardEvent) {
			m.CardViews.WithLabelValues(string(e.CardType)).Inc()
		},
		OnQuizAnswer: func(_ context.Context, e *domain.QuizEvent) {
			m.QuizAnswers.WithLabelValues(strconv.FormatBool(e.Correct)).Inc()
		},
		OnChoice: func(_ context.Context, e *domain.ChoiceEvent) {
			m.Choices.WithLabelValues(e.Store, e.Tag).Inc()
		},
	}
}
