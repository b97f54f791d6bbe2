package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/richtext"
)

// Overlay contains playback progress to visualize on the flowchart.
// A negative Current marks no card as current.
type Overlay struct {
	Visited []int
	Current int
}

// GenerateMermaid produces a Mermaid flowchart of a tutorial's card sequence.
// It applies semantic styling:
// - Intro: ((Circle))
// - Quiz: {Rhombus}, the edge out of it is labelled as gated
// - Choice: [/Parallelogram/], the edge out of it lists the choice tags
// - Milestone: [[Subroutine]]
// - Celebration: ([Stadium])
// - Default: [Rectangle]
func GenerateMermaid(t *domain.Tutorial, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i := range t.Cards {
		card := &t.Cards[i]
		opener, closer := "[", "]"
		switch card.Type {
		case domain.CardIntro:
			opener, closer = "((", "))"
		case domain.CardQuiz:
			opener, closer = "{", "}"
		case domain.CardChoice:
			opener, closer = "[/", "/]"
		case domain.CardMilestone:
			opener, closer = "[[", "]]"
		case domain.CardCelebration:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(i), opener, cardLabel(i, card), closer)
	}

	for i := 0; i+1 < len(t.Cards); i++ {
		card := &t.Cards[i]
		arrow := "-->"
		switch card.Type {
		case domain.CardQuiz:
			arrow = `-- "answered" -->`
		case domain.CardChoice:
			if tags := choiceTags(card); tags != "" {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(tags))
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(i), arrow, nodeID(i+1))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[int]bool)
		for _, i := range overlay.Visited {
			if i < 0 || i >= len(t.Cards) || seen[i] || i == overlay.Current {
				continue
			}
			seen[i] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(i))
		}
		if overlay.Current >= 0 && overlay.Current < len(t.Cards) {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

// DiagramMermaid renders a concept card's node chain left to right,
// styling highlighted positions.
func DiagramMermaid(d *domain.Diagram) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	for i, label := range d.Nodes {
		fmt.Fprintf(&sb, "    n%d[\"%s\"]\n", i, escapeLabel(label))
	}
	for i := 0; i+1 < len(d.Nodes); i++ {
		fmt.Fprintf(&sb, "    n%d --> n%d\n", i, i+1)
	}
	if len(d.Highlight) > 0 {
		sb.WriteString("    classDef highlight fill:#ede9fe,stroke:#7c3aed,stroke-width:2px,color:#000;\n")
		for i := range d.Nodes {
			if d.Highlighted(i) {
				fmt.Fprintf(&sb, "    class n%d highlight;\n", i)
			}
		}
	}
	return sb.String()
}

func nodeID(i int) string {
	return fmt.Sprintf("c%d", i)
}

func cardLabel(i int, c *domain.Card) string {
	title := richtext.Plain(c.Title)
	if title == "" {
		title = string(c.Type)
	}
	if c.Emoji != "" {
		title = c.Emoji + " " + title
	}
	return escapeLabel(fmt.Sprintf("%d. %s", i+1, title))
}

func choiceTags(c *domain.Card) string {
	tags := make([]string, 0, len(c.Choices))
	for _, ch := range c.Choices {
		tags = append(tags, ch.Tag)
	}
	return strings.Join(tags, " | ")
}

// escapeLabel keeps labels inside their double-quoted Mermaid strings.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}
