package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/viben/internal/cli"
	"github.com/aretw0/viben/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes tutorials to AI agents as MCP tools: list_tutorials,
get_tutorial, generate_tutorial, list_records and play_step.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			srv := mcp.NewServer(app.Pipeline, mcp.WithLogger(app.Logger))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				app.Logger.Info("Starting viben MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				app.Logger.Info("Starting viben MCP server (SSE)", "port", port)
				if err := srv.ServeSSE(ctx, port); err != nil {
					return err
				}
				app.Logger.Info("MCP server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
