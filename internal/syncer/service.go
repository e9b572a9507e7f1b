// Package syncer ties the crawl to the store: it runs one harvest, applies
// the output, and optionally repeats on a fixed interval.
package syncer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mquintana/quotesync/internal/metrics"
	"github.com/mquintana/quotesync/internal/scrape"
	"github.com/mquintana/quotesync/internal/store"
)

// Harvester is the crawl side of a cycle.
type Harvester interface {
	Run(ctx context.Context) scrape.Result
}

// Service runs synchronization cycles.
type Service struct {
	harvester Harvester
	applier   store.SyncApplier
	logger    *zap.Logger
}

// NewService wires a harvester to a sync applier.
func NewService(h Harvester, a store.SyncApplier, logger *zap.Logger) *Service {
	return &Service{harvester: h, applier: a, logger: logger}
}

// RunCycle performs one harvest-then-apply cycle. A truncated crawl still
// syncs the records gathered so far; re-running later converges on the full
// set because every write is an upsert. Cancellation aborts before the store
// is touched.
func (s *Service) RunCycle(ctx context.Context) (store.SyncStats, error) {
	start := time.Now()

	result := s.harvester.Run(ctx)
	metrics.ObserveHarvest(result.PagesFetched, len(result.Records), result.DetailSkips)
	s.logger.Info("harvest finished",
		zap.Int("pages", result.PagesFetched),
		zap.Int("records", len(result.Records)),
		zap.Int("detail_skips", result.DetailSkips),
		zap.Bool("ended_early", result.EndedEarly),
	)

	if err := ctx.Err(); err != nil {
		metrics.ObserveCycle("canceled", time.Since(start))
		return store.SyncStats{}, fmt.Errorf("cycle canceled: %w", err)
	}

	stats, err := s.applier.Apply(ctx, result.Records, result.Tags.Labels())
	if err != nil {
		metrics.ObserveCycle("error", time.Since(start))
		return stats, fmt.Errorf("apply harvest: %w", err)
	}

	metrics.ObserveSyncRows("tag", stats.Tags)
	metrics.ObserveSyncRows("author", stats.Authors)
	metrics.ObserveSyncRows("quote", stats.Quotes)
	metrics.ObserveSyncRows("link", stats.Links)
	metrics.ObserveSyncRecordSkips(stats.SkippedRecords)

	outcome := "ok"
	if result.EndedEarly {
		outcome = "truncated"
	}
	metrics.ObserveCycle(outcome, time.Since(start))

	s.logger.Info("sync cycle finished",
		zap.String("outcome", outcome),
		zap.Int("tags", stats.Tags),
		zap.Int("authors", stats.Authors),
		zap.Int("quotes", stats.Quotes),
		zap.Int("links", stats.Links),
		zap.Int("skipped_records", stats.SkippedRecords),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats, nil
}

// Scheduler repeats cycles on a fixed interval. Cycles never overlap: the
// loop is sequential and a tick that fires while a cycle is still running is
// coalesced by the ticker.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler builds a Scheduler around service.
func NewScheduler(service *Service, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{service: service, interval: interval, logger: logger}
}

// Run executes one cycle immediately, then one per interval until ctx is
// canceled. Cycle errors are logged, not fatal; the next tick retries.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	if _, err := s.service.RunCycle(ctx); err != nil {
		s.logger.Error("sync cycle failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.service.RunCycle(ctx); err != nil {
				s.logger.Error("sync cycle failed", zap.Error(err))
			}
		}
	}
}
