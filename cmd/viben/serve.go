package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/internal/cli"
	"github.com/aretw0/viben/internal/presentation/tui"
	httpadapter "github.com/aretw0/viben/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the tutorial API: listing and editing tutorials, generation,
record browsing, stateless playback, tutor chat, generation events over SSE,
the OpenAPI document and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		runApp(cmd, func(ctx context.Context, app *cli.App) error {
			if addr == "" {
				addr = app.Config.Server.Addr
			}
			handler, err := httpadapter.NewHandler(app.Pipeline,
				httpadapter.WithLogger(app.Logger),
				httpadapter.WithGatherer(app.Registry),
				httpadapter.WithStreams(app.Streams),
				httpadapter.WithAutoAdvance(app.Config.Server.AutoAdvance),
			)
			if err != nil {
				return err
			}

			if cli.IsTerminal(os.Stderr) {
				tui.PrintBanner(os.Stderr, viben.Version)
			}
			return serve(ctx, app, &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, app *cli.App, srv *http.Server) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		app.Logger.Info("Starting viben server", "addr", srv.Addr, "store", app.Config.Store.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		app.Logger.Info("Shutting down server")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("killing server: %w", err)
			}
		}
		app.Logger.Info("Server stopped gracefully")
		return nil
	}
}
