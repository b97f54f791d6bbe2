package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/viben/internal/presentation/graph"
	"github.com/aretw0/viben/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		cards    []domain.Card
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Card Shapes",
			cards: []domain.Card{
				{Type: domain.CardIntro, Title: "Start"},
				{Type: domain.CardQuiz, Title: "Check"},
				{Type: domain.CardChoice, Title: "Pick"},
				{Type: domain.CardMilestone, Title: "Halfway"},
				{Type: domain.CardCelebration, Title: "Done"},
			},
			contains: []string{
				`c0(("1. Start"))`,
				`c1{"2. Check"}`,
				`c2[/"3. Pick"/]`,
				`c3[["4. Halfway"]]`,
				`c4(["5. Done"])`,
			},
		},
		{
			name: "Gated And Choice Edges",
			cards: []domain.Card{
				{Type: domain.CardQuiz, Title: "Q"},
				{Type: domain.CardChoice, Title: "C", Choices: []domain.Choice{
					{Label: "Front", Tag: "frontend"},
					{Label: "Back", Tag: "backend"},
				}},
				{Type: domain.CardConcept, Title: "Next"},
			},
			contains: []string{
				`c0 -- "answered" --> c1`,
				`c1 -. "frontend | backend" .-> c2`,
				`c2["3. Next"]`,
			},
		},
		{
			name: "Label Escaping",
			cards: []domain.Card{
				{Type: domain.CardConcept, Emoji: "🧠", Title: `The <strong>"agent"</strong> loop`},
			},
			contains: []string{
				`c0["1. 🧠 The 'agent' loop"]`,
			},
		},
		{
			name: "Overlay",
			cards: []domain.Card{
				{Type: domain.CardIntro},
				{Type: domain.CardConcept},
				{Type: domain.CardCelebration},
			},
			overlay: &graph.Overlay{Visited: []int{0, 0, 1, 7}, Current: 1},
			contains: []string{
				`c0(("1. intro"))`,
				"class c0 visited;",
				"class c1 current;",
			},
			excludes: []string{
				"class c1 visited;",
				"class c7",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(&domain.Tutorial{ID: "t", Cards: tt.cards}, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
		})
	}
}

func TestDiagramMermaid(t *testing.T) {
	got := graph.DiagramMermaid(&domain.Diagram{
		Nodes:     []string{"You", "Agent", "Repo"},
		Highlight: []int{1},
	})

	for _, want := range []string{
		"graph LR",
		`n0["You"]`,
		"n0 --> n1",
		"n1 --> n2",
		"class n1 highlight;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DiagramMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
	if strings.Contains(got, "class n0") {
		t.Errorf("unexpected highlight on n0:\n%v", got)
	}
}
