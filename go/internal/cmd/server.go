package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/courtside/go/internal/api"
	"github.com/mcdev12/courtside/go/internal/kvstore"
	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/rules"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scoreboard server",
		Long: `Run the HTTP command API and the display WebSocket.

The saved match is restored on start according to match.resume_policy
and saved again on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			services, err := setupServices(ctx, cfg)
			if err != nil {
				return err
			}

			// Workers outlive the signal so the final save still reaches displays and publishers
			workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
			defer cancelWorkers()
			if err := services.Start(workerCtx); err != nil {
				services.Close()
				return err
			}

			router := api.NewRouter(api.Deps{
				Engine:         services.Engine,
				Displays:       services.Hub,
				Buzzer:         services.Buzzer,
				Metrics:        services.Metrics,
				MetricsHandler: services.MetricsHandler,
				MetricsPath:    cfg.Metrics.Path,
			})
			server := api.NewHTTPServer(cfg.Addr, router)

			serverErr := make(chan error, 1)
			go func() {
				log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
				close(serverErr)
			}()

			var runErr error
			select {
			case <-ctx.Done():
				log.Info().Msg("received shutdown signal")
			case err := <-serverErr:
				runErr = fmt.Errorf("HTTP server failed: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("HTTP server shutdown failed")
			}
			if err := services.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("service shutdown failed")
			}
			cancelWorkers()

			log.Info().Msg("courtside shutdown complete")
			return runErr
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the configured addr")
	return cmd
}

func newSnapshotCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the saved match as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			rdb, err := setupRedis(ctx, cfg)
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
			}
			store, err := setupStore(ctx, cfg, rdb)
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := store.Get(ctx, kvstore.BucketGame, match.SnapshotKey)
			if errors.Is(err, kvstore.ErrNotFound) {
				return fmt.Errorf("no saved match in %s storage", cfg.Storage.Backend)
			}
			if err != nil {
				return err
			}

			var state json.RawMessage = data
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		},
	}
}

func newPresetsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in rule presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(opts); err != nil {
				return err
			}
			reg, err := rules.Builtin()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range reg.All() {
				fmt.Fprintf(out, "%-8s %s\n", p.Name, p.Description)
			}
			return nil
		},
	}
}
