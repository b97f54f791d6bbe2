package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/viben/internal/cli"
	"github.com/aretw0/viben/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "viben",
	Short: "viben turns video records into interactive tutorial cards",
	Long: `viben reads YouTube-derived records (summary, transcript, metadata),
asks an LLM to author a short card-based tutorial for each one, stores the
result and plays it back in the terminal, over HTTP or as MCP tools.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default ./viben.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("store", "", "Store backend override: file, loam, redis, sql or memory")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file store")
}

// bootstrap loads the configuration, applies flag overrides and wires the app.
func bootstrap(cmd *cobra.Command) (*cli.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	store, _ := cmd.Flags().GetString("store")
	dir, _ := cmd.Flags().GetString("dir")

	return cli.Bootstrap(configPath, debug, func(c *config.Config) {
		if store != "" {
			c.Store.Backend = store
		}
		if dir != "" {
			c.Store.Dir = dir
		}
	})
}

// runApp bootstraps the app, runs fn under a signal-aware context and exits
// with status 1 on failure. Interruptions are not failures.
func runApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) {
	app, err := bootstrap(cmd)
	if err != nil {
		fmt.Printf("Error initializing viben: %v\n", err)
		os.Exit(1)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx := cli.NewSignalContext(parent)
	defer ctx.Cancel()

	err = cli.HandleExecutionError(fn(ctx, app))
	if cerr := app.Close(); cerr != nil {
		app.Logger.Warn("Failed to close store", "err", cerr)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
