package dsl

import "github.com/aretw0/viben/pkg/domain"

// CardBuilder provides a fluent API for configuring one card.
// It addresses the card by index since adding cards may move the slice.
type CardBuilder struct {
	index   int
	builder *Builder
}

func (c *CardBuilder) c() *domain.Card {
	return &c.builder.tutorial.Cards[c.index]
}

// Done returns to the tutorial builder.
func (c *CardBuilder) Done() *Builder {
	return c.builder
}

// Emoji sets the card emoji.
func (c *CardBuilder) Emoji(e string) *CardBuilder {
	c.c().Emoji = e
	return c
}

// Body sets the main rich text.
func (c *CardBuilder) Body(s string) *CardBuilder {
	c.c().Body = s
	return c
}

// Body2 sets the secondary rich text.
func (c *CardBuilder) Body2(s string) *CardBuilder {
	c.c().Body2 = s
	return c
}

// CTA sets the call-to-action label.
func (c *CardBuilder) CTA(label string) *CardBuilder {
	c.c().CTA = label
	return c
}

// Diagram sets an ordered chain of nodes.
func (c *CardBuilder) Diagram(caption string, nodes ...string) *CardBuilder {
	c.c().Diagram = &domain.Diagram{Nodes: nodes, Caption: caption}
	return c
}

// Highlight marks diagram nodes. It has no effect without a diagram.
func (c *CardBuilder) Highlight(idx ...int) *CardBuilder {
	if d := c.c().Diagram; d != nil {
		d.Highlight = append(d.Highlight, idx...)
	}
	return c
}

// Analogy sets the analogy box.
func (c *CardBuilder) Analogy(icon, text string) *CardBuilder {
	c.c().Analogy = &domain.Analogy{Icon: icon, Text: text}
	return c
}

// Bullets appends bullet points.
func (c *CardBuilder) Bullets(items ...string) *CardBuilder {
	c.c().Bullets = append(c.c().Bullets, items...)
	return c
}

// Warn sets the warning callout.
func (c *CardBuilder) Warn(s string) *CardBuilder {
	c.c().Warn = s
	return c
}

// Safe sets the reassurance callout.
func (c *CardBuilder) Safe(s string) *CardBuilder {
	c.c().Safe = s
	return c
}

// ConceptBox sets the boxed concept.
func (c *CardBuilder) ConceptBox(label, title, desc string) *CardBuilder {
	c.c().Concept = &domain.ConceptBox{Label: label, Title: title, Desc: desc}
	return c
}

// Code sets the code snippet with its label and caption.
func (c *CardBuilder) Code(label, code, caption string) *CardBuilder {
	card := c.c()
	card.CodeLabel, card.Code, card.CodeCaption = label, code, caption
	return c
}

// Link sets the external link.
func (c *CardBuilder) Link(url, text string) *CardBuilder {
	c.c().Link = &domain.Link{URL: url, Text: text}
	return c
}

// Help appends a question and answer pair.
func (c *CardBuilder) Help(q, a string) *CardBuilder {
	c.c().HelpItems = append(c.c().HelpItems, domain.HelpItem{Q: q, A: a})
	return c
}

// Troubleshoot appends a troubleshooting entry.
func (c *CardBuilder) Troubleshoot(label, errText, fix string) *CardBuilder {
	c.c().Troubleshoot = append(c.c().Troubleshoot, domain.Troubleshoot{Label: label, Error: errText, Fix: fix})
	return c
}

// Option appends a quiz option.
func (c *CardBuilder) Option(text string, correct bool) *CardBuilder {
	c.c().Options = append(c.c().Options, domain.QuizOption{Text: text, Correct: correct})
	return c
}

// Feedback sets the quiz feedback texts.
func (c *CardBuilder) Feedback(correct, wrong string) *CardBuilder {
	card := c.c()
	card.CorrectFeedback, card.WrongFeedback = correct, wrong
	return c
}

// Pick appends a choice.
func (c *CardBuilder) Pick(icon, label, desc, tag string) *CardBuilder {
	c.c().Choices = append(c.c().Choices, domain.Choice{Icon: icon, Label: label, Desc: desc, Tag: tag})
	return c
}

// Stats asks the celebration card to show progress stats.
func (c *CardBuilder) Stats() *CardBuilder {
	c.c().Stats = true
	return c
}

func (c *CardBuilder) modalities() *domain.Modalities {
	card := c.c()
	if card.Modalities == nil {
		card.Modalities = &domain.Modalities{}
	}
	return card.Modalities
}

// Read offers the read modality.
func (c *CardBuilder) Read(body string, callouts ...domain.Callout) *CardBuilder {
	c.modalities().Read = &domain.ReadModality{Body: body, Callouts: callouts}
	return c
}

// Watch offers the watch modality for a video segment.
func (c *CardBuilder) Watch(videoURL, start, end string) *CardBuilder {
	c.modalities().Watch = &domain.WatchModality{VideoURL: videoURL, StartTime: start, EndTime: end}
	return c
}

// Try offers the try modality.
func (c *CardBuilder) Try(prompt string, cmds ...domain.TryCommand) *CardBuilder {
	c.modalities().Try = &domain.TryModality{Prompt: prompt, Commands: cmds}
	return c
}

// Ask offers the ask modality seeded with messages.
func (c *CardBuilder) Ask(seed ...domain.ChatMessage) *CardBuilder {
	c.modalities().Ask = &domain.AskModality{InitialMessages: seed}
	return c
}
