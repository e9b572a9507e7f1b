package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mquintana/quotesync/internal/config"
	"github.com/mquintana/quotesync/internal/fetcher"
	collyfetcher "github.com/mquintana/quotesync/internal/fetcher/colly"
	"github.com/mquintana/quotesync/internal/logging"
	"github.com/mquintana/quotesync/internal/metrics"
	"github.com/mquintana/quotesync/internal/scrape"
	"github.com/mquintana/quotesync/internal/store/postgres"
	"github.com/mquintana/quotesync/internal/syncer"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotesync",
		Short: "Synchronize a quotes site into Postgres.",
		Long: `quotesync crawls a paginated quotes site, follows each author's
detail page, and upserts quotes, authors, and tags into Postgres. The serve
command also exposes a read-only HTTP API over the stored data.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment variables with the QUOTESYNC_ prefix override it")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// bootstrap loads config, builds the logger, and registers metrics. Every
// subcommand starts here.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()
	return cfg, logger, nil
}

// connectStore opens the pool and applies the schema.
func connectStore(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := postgres.Connect(ctx, postgres.PoolConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// newSyncService assembles the crawl-and-apply pipeline.
func newSyncService(cfg config.Config, pool postgres.Pool, logger *zap.Logger) *syncer.Service {
	var fetch fetcher.Fetcher = collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Site.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	harvester := scrape.NewHarvester(cfg.Site.BaseURL, fetch, logger.Named("harvest"))
	applier := postgres.NewSyncStore(pool, logger.Named("store"))
	return syncer.NewService(harvester, applier, logger.Named("syncer"))
}
