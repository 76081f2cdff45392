package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/gambit"
	"github.com/aretw0/gambit/internal/cli"
	httpAdapter "github.com/aretw0/gambit/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves the kernel over HTTP with an SSE stream of effects and state diffs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		st, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		if _, err := st.SeedIfEmpty(ctx); err != nil {
			return err
		}

		api := httpAdapter.NewServer(st.Kernel,
			httpAdapter.WithSessions(st.Kernel.Sessions()),
			httpAdapter.WithEffects(st.Kernel.Effects()),
			httpAdapter.WithMetrics(st.Metrics.Handler()),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(strings.TrimSpace(gambit.Version)),
		)
		stopFollow := api.Follow()
		defer stopFollow()

		go st.Kernel.Sessions().Janitor(ctx, cfg.Session.SweepInterval)

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr, "backend", cfg.Store.Backend)
			fmt.Printf("Gambit server listening on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			cancel()

			// Give outstanding requests a deadline for completion.
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			fmt.Println("Gambit server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
}
