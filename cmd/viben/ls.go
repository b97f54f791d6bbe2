package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/viben/internal/cli"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored tutorials, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		record, _ := cmd.Flags().GetString("record")

		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			if record != "" {
				t, err := app.Pipeline.FindBySourceRecordID(ctx, record)
				if err != nil {
					return err
				}
				return runList(ctx, staticLister{t.Summarize(time.Time{})}, os.Stdout, asJSON)
			}
			return runList(ctx, app.Pipeline, os.Stdout, asJSON)
		})
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().Bool("json", false, "Print the listing as JSON")
	lsCmd.Flags().String("record", "", "Only show the tutorial generated from this record id")
}

type lister interface {
	List(ctx context.Context) ([]domain.TutorialSummary, error)
}

type staticLister []domain.TutorialSummary

func (l staticLister) List(context.Context) ([]domain.TutorialSummary, error) { return l, nil }

func runList(ctx context.Context, l lister, w io.Writer, asJSON bool) error {
	items, err := l.List(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if items == nil {
			items = []domain.TutorialSummary{}
		}
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Fprintln(w, "No tutorials found.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "TOOL", "DIFFICULTY", "CARDS", "SAVED")
	for _, s := range items {
		saved := ""
		if !s.CreatedAt.IsZero() {
			saved = s.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		t.Row(s.ID, s.Title, s.Tool, string(s.Difficulty), strconv.Itoa(s.CardCount), saved)
	}
	fmt.Fprintln(w, t.String())
	return nil
}
