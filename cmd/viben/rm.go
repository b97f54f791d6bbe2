package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/viben/internal/cli"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <tutorial-id>...",
	Short: "Remove one or more tutorials",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			return runRemove(ctx, app.Pipeline, args, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

type deleter interface {
	Delete(ctx context.Context, id string) error
}

func runRemove(ctx context.Context, d deleter, ids []string, w io.Writer) error {
	failed := 0
	for _, id := range ids {
		if err := d.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Removed tutorial '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d removals failed", failed, len(ids))
	}
	return nil
}
