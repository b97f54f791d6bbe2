package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/viben/internal/cli"
	"github.com/aretw0/viben/internal/presentation/graph"
	"github.com/aretw0/viben/internal/presentation/tui"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <tutorial-id>",
	Short: "Print a stored tutorial",
	Long: `Renders every card of a tutorial as Markdown in the terminal.
--json prints the stored document and --mermaid prints the card sequence and
concept diagrams as Mermaid blocks.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var opts showOptions
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Mermaid, _ = cmd.Flags().GetBool("mermaid")
		opts.Raw, _ = cmd.Flags().GetBool("raw")
		opts.Style, _ = cmd.Flags().GetString("style")
		opts.Width, _ = cmd.Flags().GetInt("width")

		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			t, err := app.Pipeline.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if !opts.Raw && opts.Style == "" && !cli.IsTerminal(os.Stdout) {
				opts.Raw = true
			}
			return runShow(t, opts, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("json", false, "Print the stored JSON document")
	showCmd.Flags().Bool("mermaid", false, "Print Mermaid diagrams instead of cards")
	showCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
	showCmd.Flags().String("style", "", "Glamour style (dark, light, notty, ...); default follows the terminal")
	showCmd.Flags().Int("width", 100, "Wrap width")
}

type showOptions struct {
	JSON    bool
	Mermaid bool
	Raw     bool
	Style   string
	Width   int
}

func runShow(t *domain.Tutorial, opts showOptions, w io.Writer) error {
	switch {
	case opts.JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case opts.Mermaid:
		fmt.Fprintf(w, "```mermaid\n%s```\n", graph.GenerateMermaid(t, nil))
		for i, c := range t.Cards {
			if c.Diagram == nil || len(c.Diagram.Nodes) == 0 {
				continue
			}
			fmt.Fprintf(w, "\nCard %d: %s\n\n```mermaid\n%s```\n", i+1, c.Title, graph.DiagramMermaid(c.Diagram))
		}
		return nil
	}

	md, err := tui.TutorialMarkdown(t)
	if err != nil {
		return err
	}
	if opts.Raw {
		_, err := io.WriteString(w, md)
		return err
	}

	render := tui.NewRenderer(opts.Width)
	if opts.Style != "" {
		render = tui.NewStyledRenderer(opts.Style, opts.Width)
	}
	out, err := render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
