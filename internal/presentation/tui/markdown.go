package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/prompt"
	"github.com/aretw0/viben/pkg/richtext"
)

// CardMarkdown renders the current card of a playback view as Markdown,
// including the active modality and, on answered quizzes, the feedback.
func CardMarkdown(v *playback.View) string {
	c := &v.Card
	var b mdBuilder

	title := richtext.ToMarkdown(c.Title)
	if c.Emoji != "" {
		title = c.Emoji + " " + title
	}
	if title = strings.TrimSpace(title); title != "" {
		b.line("# " + title)
	}
	b.para(fmt.Sprintf("_Card %d of %d · %s_", v.Index+1, v.Total, c.Type))
	b.para(richtext.ToMarkdown(c.Body))
	b.para(richtext.ToMarkdown(c.Body2))

	switch c.Type {
	case domain.CardConcept:
		writeConcept(&b, c)
	case domain.CardAction:
		writeAction(&b, c)
	case domain.CardQuiz:
		writeQuiz(&b, c, v)
	case domain.CardChoice:
		writeChoice(&b, c, v)
	case domain.CardCelebration:
		if v.Stats != nil {
			b.para(fmt.Sprintf("**Quizzes:** %d of %d correct  \n**Choices made:** %d",
				v.Stats.Correct, v.Stats.Quizzes, v.Stats.Choices))
		}
	}

	if v.Modality != "" {
		writeModality(&b, c, v.Modality)
	}
	if c.CTA != "" {
		b.para("**→ " + richtext.ToMarkdown(c.CTA) + "**")
	}
	return b.String()
}

// DiagramLine renders a diagram as a single arrow chain with highlighted nodes in bold.
func DiagramLine(d *domain.Diagram) string {
	parts := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		if d.Highlighted(i) {
			parts[i] = "**" + n + "**"
		} else {
			parts[i] = "`" + n + "`"
		}
	}
	return strings.Join(parts, " → ")
}

func writeConcept(b *mdBuilder, c *domain.Card) {
	if c.Diagram != nil && len(c.Diagram.Nodes) > 0 {
		b.para(DiagramLine(c.Diagram))
		if c.Diagram.Caption != "" {
			b.para("_" + c.Diagram.Caption + "_")
		}
	}
	if c.Analogy != nil {
		b.para(quote(strings.TrimSpace(c.Analogy.Icon + " " + richtext.ToMarkdown(c.Analogy.Text))))
	}
	if len(c.Bullets) > 0 {
		var sb strings.Builder
		for _, item := range c.Bullets {
			sb.WriteString("- " + richtext.ToMarkdown(item) + "\n")
		}
		b.para(strings.TrimRight(sb.String(), "\n"))
	}
	if c.Concept != nil {
		b.para(fmt.Sprintf("**%s** · %s\n\n%s", c.Concept.Label, c.Concept.Title, richtext.ToMarkdown(c.Concept.Desc)))
	}
	if c.Warn != "" {
		b.para(quote("⚠️ " + richtext.ToMarkdown(c.Warn)))
	}
	if c.Safe != "" {
		b.para(quote("✅ " + richtext.ToMarkdown(c.Safe)))
	}
}

func writeAction(b *mdBuilder, c *domain.Card) {
	if c.Code != "" {
		if c.CodeLabel != "" {
			b.para("**" + c.CodeLabel + "**")
		}
		b.para(fence(c.Code))
		if c.CodeCaption != "" {
			b.para("_" + c.CodeCaption + "_")
		}
	}
	if c.Link != nil && c.Link.URL != "" {
		text := c.Link.Text
		if text == "" {
			text = c.Link.URL
		}
		b.para(fmt.Sprintf("[%s](%s)", text, c.Link.URL))
	}
	if len(c.HelpItems) > 0 {
		b.line("## Help")
		for _, h := range c.HelpItems {
			b.para(fmt.Sprintf("**%s**  \n%s", h.Q, richtext.ToMarkdown(h.A)))
		}
	}
	if len(c.Troubleshoot) > 0 {
		b.line("## Troubleshooting")
		for _, ts := range c.Troubleshoot {
			entry := "**" + ts.Label + "**"
			if ts.Error != "" {
				entry += "\n\n" + fence(ts.Error)
			}
			entry += "\n\n" + richtext.ToMarkdown(ts.Fix)
			b.para(entry)
		}
	}
}

func writeQuiz(b *mdBuilder, c *domain.Card, v *playback.View) {
	b.para("**" + richtext.ToMarkdown(c.Question) + "**")
	picked, answered := v.State.Answers[v.Index]

	var sb strings.Builder
	for i, opt := range c.Options {
		mark := ""
		if answered {
			switch {
			case opt.Correct:
				mark = " ✓"
			case i == picked:
				mark = " ✗"
			}
		}
		fmt.Fprintf(&sb, "%d. %s%s\n", i+1, opt.Text, mark)
	}
	b.para(strings.TrimRight(sb.String(), "\n"))

	if !answered {
		return
	}
	if picked >= 0 && picked < len(c.Options) && c.Options[picked].Correct {
		b.para(quote("✅ " + richtext.ToMarkdown(c.CorrectFeedback)))
	} else {
		b.para(quote("❌ " + richtext.ToMarkdown(c.WrongFeedback)))
	}
}

func writeChoice(b *mdBuilder, c *domain.Card, v *playback.View) {
	chosen := v.State.Choices[c.Store]
	var sb strings.Builder
	for i, ch := range c.Choices {
		label := strings.TrimSpace(ch.Icon + " **" + ch.Label + "**")
		if ch.Desc != "" {
			label += ": " + ch.Desc
		}
		if chosen != "" && ch.Tag == chosen {
			label += " ◀"
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, label)
	}
	b.para(strings.TrimRight(sb.String(), "\n"))
}

func writeModality(b *mdBuilder, c *domain.Card, active domain.Modality) {
	var tabs []string
	for _, m := range c.Modalities.Offered() {
		if m == active {
			tabs = append(tabs, "**["+string(m)+"]**")
		} else {
			tabs = append(tabs, string(m))
		}
	}
	b.line("---")
	b.para(strings.Join(tabs, " · "))

	m := c.Modalities
	switch active {
	case domain.ModalityRead:
		b.para(richtext.ToMarkdown(m.Read.Body))
		for _, cb := range m.Read.CodeBlocks {
			b.para(fence(cb.Code))
			if cb.Caption != "" {
				b.para("_" + cb.Caption + "_")
			}
		}
		for _, co := range m.Read.Callouts {
			b.para(quote(calloutIcon(co.Type) + " " + richtext.ToMarkdown(co.Text)))
		}
	case domain.ModalityWatch:
		w := m.Watch
		u := w.VideoURL
		if id, ok := prompt.ExtractVideoID(w.VideoURL); ok {
			u = prompt.EmbedURL(id, w.StartTime)
		}
		span := w.StartTime
		if w.EndTime != "" {
			span += "–" + w.EndTime
		}
		entry := fmt.Sprintf("▶ [%s](%s)", u, u)
		if span != "" {
			entry += " (" + span + ")"
		}
		b.para(entry)
		if w.Source != nil {
			b.para(strings.TrimSpace("_" + w.Source.Author + "_ " + w.Source.Description))
		}
	case domain.ModalityTry:
		b.para(richtext.ToMarkdown(m.Try.Prompt))
		for _, cmd := range m.Try.Commands {
			b.para(fence("$ " + cmd.Input + "\n" + cmd.Output))
			if cmd.Hint != "" {
				b.para("_Hint: " + cmd.Hint + "_")
			}
		}
	case domain.ModalityAsk:
		for _, msg := range m.Ask.InitialMessages {
			b.para(fmt.Sprintf("**%s:** %s", msg.Role, richtext.ToMarkdown(msg.Content)))
		}
	}
}

func calloutIcon(k domain.CalloutKind) string {
	switch k {
	case domain.CalloutWarn:
		return "⚠️"
	case domain.CalloutSafe:
		return "✅"
	case domain.CalloutTip:
		return "💡"
	default:
		return "ℹ️"
	}
}

func quote(s string) string {
	return "> " + strings.ReplaceAll(s, "\n", "\n> ")
}

func fence(code string) string {
	return "```\n" + strings.TrimRight(code, "\n") + "\n```"
}

type mdBuilder struct {
	sb strings.Builder
}

func (b *mdBuilder) line(s string) {
	b.sb.WriteString(s)
	b.sb.WriteString("\n\n")
}

func (b *mdBuilder) para(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	b.line(s)
}

func (b *mdBuilder) String() string {
	return strings.TrimRight(b.sb.String(), "\n") + "\n"
}

// TutorialMarkdown renders every card of t in order, each in its first
// offered modality, under a header with the tutorial metadata.
func TutorialMarkdown(t *domain.Tutorial) (string, error) {
	sess, err := playback.New(t)
	if err != nil {
		return "", err
	}

	var b mdBuilder
	b.line("# " + richtext.ToMarkdown(t.Title))
	var meta []string
	if t.Tool != "" {
		meta = append(meta, "**Tool:** "+t.Tool)
	}
	if t.Difficulty != "" {
		meta = append(meta, "**Difficulty:** "+string(t.Difficulty))
	}
	if t.EstimatedMinutes > 0 {
		meta = append(meta, fmt.Sprintf("~%d minutes", t.EstimatedMinutes))
	}
	b.para(strings.Join(meta, " · "))
	b.para(richtext.ToMarkdown(t.Description))
	if src := t.Source; src.SourceURL != "" {
		credit := src.SourceURL
		if src.Author != "" {
			credit = src.Author + " · " + credit
		}
		b.para("_Source: " + credit + "_")
	}

	for i := range t.Cards {
		if err := sess.JumpTo(i); err != nil {
			return "", err
		}
		v, err := sess.View(nil)
		if err != nil {
			return "", err
		}
		b.line("---")
		b.line(strings.TrimRight(CardMarkdown(v), "\n"))
	}
	return b.String(), nil
}
