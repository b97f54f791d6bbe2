package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGenerate   EventType = "generate"
	EventCardEnter  EventType = "card_enter"
	EventQuizAnswer EventType = "quiz_answer"
	EventChoice     EventType = "choice"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	TutorialID string    `json:"tutorial_id"`
}

// GenerationEvent reports the outcome of one generate call.
type GenerationEvent struct {
	EventBase
	RecordID string        `json:"record_id"`
	Reused   bool          `json:"reused,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// CardEvent reports that playback entered a card.
type CardEvent struct {
	EventBase
	Index    int      `json:"index"`
	CardType CardType `json:"card_type"`
}

// QuizEvent reports a recorded quiz answer.
type QuizEvent struct {
	EventBase
	Index   int  `json:"index"`
	Option  int  `json:"option"`
	Correct bool `json:"correct"`
}

// ChoiceEvent reports a recorded choice.
type ChoiceEvent struct {
	EventBase
	Store string `json:"store"`
	Tag   string `json:"tag"`
}

// LifecycleHooks defines callbacks for pipeline and playback observability.
type LifecycleHooks struct {
	OnGenerate   func(context.Context, *GenerationEvent)
	OnCardEnter  func(context.Context, *CardEvent)
	OnQuizAnswer func(context.Context, *QuizEvent)
	OnChoice     func(context.Context, *ChoiceEvent)
}
