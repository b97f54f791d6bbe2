package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the viben logo and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`        _ _              `, "#818cf8"},
		{` __   _(_) |__   ___ _ __  `, "#a78bfa"},
		{` \ \ / / | '_ \ / _ \ '_ \ `, "#c084fc"},
		{`  \ V /| | |_) |  __/ | | |`, "#e879f9"},
		{`   \_/ |_|_.__/ \___|_| |_|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("   tutorials from videos · "+version).Faint())
	fmt.Fprintln(w)
}
