package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/handlers"
	"github.com/lehigh-university-libraries/shelfscan/internal/openlibrary"
	"github.com/lehigh-university-libraries/shelfscan/internal/pipeline"
	"github.com/lehigh-university-libraries/shelfscan/internal/resolve"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the shelf review interface",
		Long: `Starts the Shelfscan web interface on the specified port.

The web interface accepts bookshelf photo uploads, shows the identified book
list for review and editing, resolves the reviewed list against Open Library,
and exports CSV for the downstream catalog tool.`,
		Example: `  # Start server on default port 8888
  shelfscan serve

  # Start server on custom port
  shelfscan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := newVisionClient(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := closeClient(); err != nil {
					slog.Warn("Failed to close classification client", "err", err)
				}
			}()

			handler := handlers.New(
				pipeline.New(client),
				resolve.New(openlibrary.NewClient()),
			)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/scans", handler.HandleScans)
			mux.HandleFunc("/api/scans/", handler.HandleScanDetail)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Shelfscan interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
