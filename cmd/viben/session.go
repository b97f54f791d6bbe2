package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/viben/internal/adapters"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved playback sessions",
	Long:  `List, inspect, and remove the playback sessions stored in .viben/sessions.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved sessions",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSessionList(ctxOf(cmd), getSessionStore(cmd), os.Stdout); err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session>",
	Short: "Print the saved state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		saved, err := getSessionStore(cmd).Load(ctxOf(cmd), args[0])
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(saved, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling state: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getSessionStore(cmd)
		hasError := false

		for _, name := range args {
			if err := store.Delete(ctxOf(cmd), name); err != nil {
				fmt.Printf("Error removing '%s': %v\n", name, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", name)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionCmd.PersistentFlags().String("session-dir", "", "Directory for saved sessions (default .viben/sessions)")
}

func getSessionStore(cmd *cobra.Command) *adapters.SessionStore {
	dir, _ := cmd.Flags().GetString("session-dir")
	return adapters.NewSessionStore(dir)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runSessionList(ctx context.Context, store *adapters.SessionStore, w io.Writer) error {
	names, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No saved sessions found.")
		return nil
	}

	fmt.Fprintln(w, "Saved Sessions:")
	for _, name := range names {
		saved, err := store.Load(ctx, name)
		if err != nil {
			fmt.Fprintf(w, "- %s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(w, "- %s: %s, card %d, %s\n", name, saved.TutorialID, saved.State.Index+1,
			saved.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
