package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/viben/internal/cli"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records [record-id]",
	Short: "Browse source records",
	Long: `Lists YouTube records from Airtable, newest first, or prints a single
record as JSON when an id is given. Filters combine.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var q ports.RecordQuery
		q.Tag, _ = cmd.Flags().GetString("tag")
		q.Difficulty, _ = cmd.Flags().GetString("difficulty")
		q.Search, _ = cmd.Flags().GetString("search")
		q.Offset, _ = cmd.Flags().GetString("offset")
		q.PageSize, _ = cmd.Flags().GetInt("page-size")
		asJSON, _ := cmd.Flags().GetBool("json")

		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			if len(args) == 1 {
				rec, err := app.Pipeline.Record(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(os.Stdout, rec)
			}
			return runRecords(ctx, app.Pipeline, q, asJSON, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)

	recordsCmd.Flags().String("tag", "", "Only records with this tag")
	recordsCmd.Flags().String("difficulty", "", "Only records at this difficulty level")
	recordsCmd.Flags().String("search", "", "Case-insensitive match on titles and summary")
	recordsCmd.Flags().String("offset", "", "Continue from a previous page")
	recordsCmd.Flags().Int("page-size", 20, "Records per page")
	recordsCmd.Flags().Bool("json", false, "Print the page as JSON")
}

type recordLister interface {
	Records(ctx context.Context, q ports.RecordQuery) (*domain.RecordPage, error)
}

func runRecords(ctx context.Context, src recordLister, q ports.RecordQuery, asJSON bool, w io.Writer) error {
	page, err := src.Records(ctx, q)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, page)
	}

	if len(page.Records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "AUTHOR", "DIFFICULTY", "TAGS", "PUBLISHED")
	for _, r := range page.Records {
		t.Row(r.ID, r.DisplayTitle(), r.Author, r.DifficultyLevel, strings.Join(r.Tags, ", "), r.PublishedAt)
	}
	fmt.Fprintln(w, t.String())
	if page.Offset != "" {
		fmt.Fprintf(w, "More records: --offset %s\n", page.Offset)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
