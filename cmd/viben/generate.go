package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/internal/cli"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <record-id>...",
	Short: "Generate tutorials from source records",
	Long: `Fetches each record from Airtable, asks the configured LLM for a card
sequence, validates it and saves the tutorial. A record that already has a
tutorial is reused unless --force is given. Several ids run as a batch that
keeps going when one record fails.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		delay, _ := cmd.Flags().GetDuration("delay")

		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			opts := viben.BatchOptions{
				Concurrency: app.Config.Generation.Concurrency,
				Delay:       app.Config.Generation.Delay,
				Force:       force,
			}
			if cmd.Flags().Changed("concurrency") {
				opts.Concurrency = concurrency
			}
			if cmd.Flags().Changed("delay") {
				opts.Delay = delay
			}
			return runGenerate(ctx, app.Pipeline, args, opts, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolP("force", "f", false, "Regenerate even when a tutorial for the record exists")
	generateCmd.Flags().IntP("concurrency", "c", 1, "Generations in flight for a batch")
	generateCmd.Flags().Duration("delay", 2*time.Second, "Pause between starting batch generations")
}

type generator interface {
	Generate(ctx context.Context, recordID string, opts viben.GenerateOptions) (*viben.GenerateResult, error)
	GenerateBatch(ctx context.Context, recordIDs []string, opts viben.BatchOptions) []viben.BatchResult
}

func runGenerate(ctx context.Context, p generator, ids []string, opts viben.BatchOptions, w io.Writer) error {
	if len(ids) == 1 {
		res, err := p.Generate(ctx, ids[0], viben.GenerateOptions{Force: opts.Force})
		if err != nil {
			return err
		}
		printResult(w, viben.BatchResult{RecordID: ids[0], Tutorial: res.Tutorial, Reused: res.Reused})
		return nil
	}

	failed := 0
	for _, res := range p.GenerateBatch(ctx, ids, opts) {
		if res.Err != nil {
			failed++
		}
		printResult(w, res)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d generations failed", failed, len(ids))
	}
	return nil
}

func printResult(w io.Writer, res viben.BatchResult) {
	switch {
	case res.Err != nil:
		fmt.Fprintf(w, "✗ %s: %v\n", res.RecordID, res.Err)
	case res.Reused:
		fmt.Fprintf(w, "= %s: reused %s (%q)\n", res.RecordID, res.Tutorial.ID, res.Tutorial.Title)
	default:
		fmt.Fprintf(w, "✓ %s: generated %s (%q, %d cards)\n",
			res.RecordID, res.Tutorial.ID, res.Tutorial.Title, len(res.Tutorial.Cards))
	}
}
