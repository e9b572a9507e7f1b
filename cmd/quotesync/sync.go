package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mquintana/quotesync/internal/syncer"
)

func newSyncCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a synchronization cycle without the HTTP server.",
		Long: `sync crawls the site and applies the result to Postgres, then exits.
With --watch it keeps running, one cycle per configured interval.`,
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

			service := newSyncService(cfg, pool, logger)
			if watch {
				sched := syncer.NewScheduler(service, cfg.SyncInterval(), logger.Named("scheduler"))
				if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
					return err
				}
				return nil
			}

			stats, err := service.RunCycle(ctx)
			if err != nil {
				return err
			}
			logger.Info("sync complete",
				zap.Int("tags", stats.Tags),
				zap.Int("authors", stats.Authors),
				zap.Int("quotes", stats.Quotes),
				zap.Int("links", stats.Links),
				zap.Int("skipped_records", stats.SkippedRecords),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running, one cycle per configured interval")
	return cmd
}
