package main

import (
	"context"

	"github.com/aretw0/viben/internal/cli"
	"github.com/spf13/cobra"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play <tutorial-id>",
	Short: "Play a tutorial interactively",
	Long: `Opens the card player. On a terminal it runs full screen; with --plain,
or when input is piped, it reads one command per line.

Progress is kept under .viben/sessions when --session is given, and resumed
the next time the same session name is used.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.PlayOptions{TutorialID: args[0]}
		opts.SessionName, _ = cmd.Flags().GetString("session")
		opts.SessionDir, _ = cmd.Flags().GetString("session-dir")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.RunPlay(ctx, app, opts)
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("session", "s", "", "Session name to save and resume progress")
	playCmd.Flags().String("session-dir", "", "Directory for saved sessions (default .viben/sessions)")
	playCmd.Flags().Bool("fresh", false, "Discard the saved session and start from the first card")
	playCmd.Flags().Bool("plain", false, "Use the line-mode player even on a terminal")
}
