// Package tutor answers learner questions about the card they are on.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/aretw0/viben/pkg/richtext"
)

// MaxTokens caps tutor replies.
const MaxTokens = 512

var ErrNoMessages = errors.New("no messages provided")

// CardContext describes where the learner is.
type CardContext struct {
	Type          domain.CardType `json:"type"`
	Title         string          `json:"title,omitempty"`
	Body          string          `json:"body,omitempty"`
	TutorialTitle string          `json:"tutorialTitle"`
}

// ContextFor builds the context for card i of t.
func ContextFor(t *domain.Tutorial, i int) CardContext {
	c := t.Cards[i]
	return CardContext{
		Type:          c.Type,
		Title:         c.Title,
		Body:          c.Body,
		TutorialTitle: t.Title,
	}
}

// SystemPrompt renders the tutor instructions for the given card.
func SystemPrompt(cc CardContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly, concise tutor helping a learner work through a tutorial called %q.\n\n", cc.TutorialTitle)
	fmt.Fprintf(&b, "They are currently on a %s card", cc.Type)
	if cc.Title != "" {
		fmt.Fprintf(&b, " titled %q", cc.Title)
	}
	b.WriteString(".\n")
	if body := richtext.Plain(cc.Body); body != "" {
		b.WriteString("\nCard content:\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(`
Rules:
- Keep answers short (2-4 sentences unless they ask for detail)
- Use simple language, avoid jargon unless the card already introduces it
- If they seem confused, try a different analogy or break it down further
- You can use markdown for code blocks or emphasis
- Stay focused on the current topic and gently redirect off-topic questions`)
	return b.String()
}

// Tutor holds the chat collaborator.
type Tutor struct {
	chatter ports.Chatter
}

// New creates a Tutor backed by chatter.
func New(chatter ports.Chatter) *Tutor {
	return &Tutor{chatter: chatter}
}

// Ask sends the conversation so far and returns the tutor's reply.
func (t *Tutor) Ask(ctx context.Context, cc CardContext, messages []domain.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	for i, m := range messages {
		if m.Role != domain.RoleBot && m.Role != domain.RoleUser {
			return "", domain.NewShapeError(fmt.Sprintf("messages[%d].role", i), fmt.Sprintf("unknown role %q", m.Role))
		}
	}
	reply, err := t.chatter.Chat(ctx, SystemPrompt(cc), messages)
	if err != nil {
		return "", fmt.Errorf("tutor chat: %w", err)
	}
	return reply, nil
}
