package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mquintana/quotesync/internal/api"
	"github.com/mquintana/quotesync/internal/store/postgres"
	"github.com/mquintana/quotesync/internal/syncer"
)

func newServeCmd() *cobra.Command {
	var noScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API and run the background scheduler.",
		Long: `serve exposes the read-only dashboard API and, unless --no-scheduler is
set, runs synchronization cycles in the background on the configured
interval.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync failure is harmless

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := connectStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			reader := postgres.NewReadStore(pool)
			apiServer := api.NewServer(reader, pool, logger.Named("api"))

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           apiServer.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			if !noScheduler {
				service := newSyncService(cfg, pool, logger)
				sched := syncer.NewScheduler(service, cfg.SyncInterval(), logger.Named("scheduler"))
				go func() {
					if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
						logger.Error("scheduler stopped", zap.Error(err))
					}
				}()
			}

			go func() {
				logger.Info("http server started", zap.Int("port", cfg.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", zap.Error(err))
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("shutdown initiated")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown error", zap.Error(err))
			}
			logger.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "serve the API without background synchronization")
	return cmd
}
