package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// Renderer turns Markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background; width 0 keeps glamour's default wrap.
func NewRenderer(width int) Renderer {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	return newRenderer(width, opts...)
}

// NewStyledRenderer uses a fixed glamour style such as "dark", "light" or "notty".
// The interactive player uses it since style detection queries the terminal.
func NewStyledRenderer(style string, width int) Renderer {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	return newRenderer(width, opts...)
}

// newRenderer falls back to word-wrapped plain Markdown when glamour cannot
// be initialized.
func newRenderer(width int, opts ...glamour.TermRendererOption) Renderer {
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return plainRenderer(width)
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

func plainRenderer(width int) Renderer {
	return func(markdown string) (string, error) {
		if width <= 0 {
			return markdown, nil
		}
		return wordwrap.String(strings.TrimRight(markdown, "\n"), width) + "\n", nil
	}
}
