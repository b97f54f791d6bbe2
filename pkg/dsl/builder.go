package dsl

import (
	"github.com/aretw0/viben/pkg/domain"
)

// Builder manages the tutorial construction.
type Builder struct {
	tutorial domain.Tutorial
}

// New creates a builder for a tutorial with the given id and title.
func New(id, title string) *Builder {
	return &Builder{
		tutorial: domain.Tutorial{
			ID:    id,
			Title: title,
			Tags:  []string{},
		},
	}
}

// Description sets the tutorial description.
func (b *Builder) Description(s string) *Builder {
	b.tutorial.Description = s
	return b
}

// Tool sets the tool the tutorial teaches.
func (b *Builder) Tool(name string) *Builder {
	b.tutorial.Tool = name
	return b
}

// Tags appends tags.
func (b *Builder) Tags(tags ...string) *Builder {
	b.tutorial.Tags = append(b.tutorial.Tags, tags...)
	return b
}

// Difficulty sets the difficulty level.
func (b *Builder) Difficulty(d domain.Difficulty) *Builder {
	b.tutorial.Difficulty = d
	return b
}

// Minutes sets the estimated completion time.
func (b *Builder) Minutes(m int) *Builder {
	b.tutorial.EstimatedMinutes = m
	return b
}

// Source sets the attribution block.
func (b *Builder) Source(src domain.Source) *Builder {
	b.tutorial.Source = src
	return b
}

// Intro adds an intro card.
func (b *Builder) Intro(title string) *CardBuilder {
	return b.card(domain.CardIntro, title)
}

// Concept adds a concept card.
func (b *Builder) Concept(title string) *CardBuilder {
	return b.card(domain.CardConcept, title)
}

// Action adds an action card.
func (b *Builder) Action(title string) *CardBuilder {
	return b.card(domain.CardAction, title)
}

// Quiz adds a quiz card asking question.
func (b *Builder) Quiz(question string) *CardBuilder {
	cb := b.card(domain.CardQuiz, "")
	cb.c().Question = question
	return cb
}

// Choice adds a choice card recording the picked tag under store.
func (b *Builder) Choice(title, store string) *CardBuilder {
	cb := b.card(domain.CardChoice, title)
	cb.c().Store = store
	return cb
}

// Milestone adds a milestone card.
func (b *Builder) Milestone(title string) *CardBuilder {
	return b.card(domain.CardMilestone, title)
}

// Celebration adds a celebration card.
func (b *Builder) Celebration(title string) *CardBuilder {
	return b.card(domain.CardCelebration, title)
}

func (b *Builder) card(t domain.CardType, title string) *CardBuilder {
	b.tutorial.Cards = append(b.tutorial.Cards, domain.Card{Type: t, Title: title})
	return &CardBuilder{
		index:   len(b.tutorial.Cards) - 1,
		builder: b,
	}
}

// Build validates and returns the tutorial.
func (b *Builder) Build(opts ...domain.ValidateOption) (*domain.Tutorial, error) {
	t, err := b.tutorial.Clone()
	if err != nil {
		return nil, err
	}
	if err := t.Validate(opts...); err != nil {
		return nil, err
	}
	return t, nil
}

// MustBuild is like Build but panics on invalid tutorials.
func (b *Builder) MustBuild(opts ...domain.ValidateOption) *domain.Tutorial {
	t, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return t
}
