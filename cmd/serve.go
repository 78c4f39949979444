package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/borrowreport/internal/export"
	"github.com/lehigh-university-libraries/borrowreport/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var port string
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the borrowed books report",
		Long: `Starts the report web interface on the specified port.

Every page view fetches both collections from the library API, so the
report always reflects the current state of circulation.`,
		Example: `  # Start server on default port 8888
  borrowreport serve --api-url https://library.example.edu

  # Start server on custom port
  borrowreport serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newReportService(src)
			if err != nil {
				return err
			}

			browser := export.NewBrowser(opts.cfg.ChromeBin)
			defer func() {
				if err := browser.Close(); err != nil {
					slog.Error("Failed to close browser", "err", err)
				}
			}()

			mux := http.NewServeMux()
			handlers.New(svc, browser).Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

						serverErr := make(chan error, 1)
			go func() {
				slog.Info("Report interface available", "addr", addr, "url", "http://localhost"+addr+handlers.ReportPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// fang cancels the command context on interrupt
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
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
	cmd.Flags().StringVar(&src.borrowedFile, "borrowed-file", "", "Serve from a saved borrowed books payload instead of the API")
	cmd.Flags().StringVar(&src.approvedFile, "approved-file", "", "Serve from a saved approved books payload instead of the API")

	return cmd
}
