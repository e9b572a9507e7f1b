package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/mquintana/quotesync/internal/scrape"
	"github.com/mquintana/quotesync/internal/store"
)

const (
	upsertTagSQL = `
		INSERT INTO tag (label)
		VALUES ($1)
		ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
		RETURNING tag_id;
	`
	upsertAuthorSQL = `
		INSERT INTO author (first_name, last_name, url, born_date, born_location, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (first_name, last_name) DO UPDATE
		SET url = EXCLUDED.url,
		    born_date = EXCLUDED.born_date,
		    born_location = EXCLUDED.born_location,
		    description = EXCLUDED.description
		RETURNING author_id;
	`
	upsertQuoteSQL = `
		INSERT INTO quote (text, author_id)
		VALUES ($1, $2)
		ON CONFLICT (text) DO UPDATE SET author_id = EXCLUDED.author_id
		RETURNING quote_id;
	`
	upsertLinkSQL = `
		INSERT INTO quote_tag (quote_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (quote_id, tag_id) DO NOTHING;
	`

	savepointSQL  = "SAVEPOINT sync_record;"
	rollbackToSQL = "ROLLBACK TO SAVEPOINT sync_record;"
	releaseSQL    = "RELEASE SAVEPOINT sync_record;"
)

// SyncStore applies crawl output to Postgres via an idempotent three-phase
// upsert (tags, then authors, then quotes and their tag links) inside one
// transaction. Each row runs under a savepoint so a bad row is rolled back
// and skipped without poisoning the transaction; only a store-level failure
// aborts the run, and then nothing is committed.
type SyncStore struct {
	pool   Pool
	logger *zap.Logger
}

// NewSyncStore builds a SyncStore on the shared pool.
func NewSyncStore(pool Pool, logger *zap.Logger) *SyncStore {
	return &SyncStore{pool: pool, logger: logger}
}

var _ store.SyncApplier = (*SyncStore)(nil)

// Apply implements store.SyncApplier.
func (s *SyncStore) Apply(
	ctx context.Context,
	records []scrape.Record,
	tags []scrape.TagLabel,
) (store.SyncStats, error) {
	var stats store.SyncStats

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("begin sync transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tagIDs, err := s.applyTags(ctx, tx, tags, &stats)
	if err != nil {
		return stats, err
	}
	authorIDs, err := s.applyAuthors(ctx, tx, records, &stats)
	if err != nil {
		return stats, err
	}
	if err := s.applyQuotes(ctx, tx, records, tagIDs, authorIDs, &stats); err != nil {
		return stats, err
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("commit sync transaction: %w", err)
	}
	return stats, nil
}

// applyTags upserts every label keyed on the label itself and returns the
// mapping from run-local tag id to the store-assigned one. Run-local ids are
// never written: the store is the sole authority for tag identity, so two
// runs that assign the same small integer to different labels cannot corrupt
// the join table.
func (s *SyncStore) applyTags(
	ctx context.Context,
	tx pgx.Tx,
	tags []scrape.TagLabel,
	stats *store.SyncStats,
) (map[int]int64, error) {
	ids := make(map[int]int64, len(tags))
	for _, tag := range tags {
		var id int64
		applied, err := s.withSavepoint(ctx, tx, func() error {
			return tx.QueryRow(ctx, upsertTagSQL, tag.Label).Scan(&id)
		})
		if err != nil {
			return nil, err
		}
		if !applied {
			continue
		}
		ids[tag.ID] = id
		stats.Tags++
	}
	return ids, nil
}

// applyAuthors upserts one row per (first, last) pair, in record order,
// overwriting the descriptive fields on conflict. Later records for the same
// pair win, matching the crawl's page order.
func (s *SyncStore) applyAuthors(
	ctx context.Context,
	tx pgx.Tx,
	records []scrape.Record,
	stats *store.SyncStats,
) (map[[2]string]int64, error) {
	ids := make(map[[2]string]int64)
	for _, rec := range records {
		var id int64
		applied, err := s.withSavepoint(ctx, tx, func() error {
			return tx.QueryRow(ctx, upsertAuthorSQL,
				rec.FirstName,
				rec.LastName,
				rec.AuthorURL,
				rec.BornDate,
				rec.BornLocation,
				rec.Description,
			).Scan(&id)
		})
		if err != nil {
			return nil, err
		}
		if !applied {
			continue
		}
		key := [2]string{rec.FirstName, rec.LastName}
		if _, seen := ids[key]; !seen {
			stats.Authors++
		}
		ids[key] = id
	}
	return ids, nil
}

// applyQuotes upserts each quote keyed on its text, then the (quote, tag)
// join rows. A record whose author never made it into the store is skipped,
// not fatal; likewise a record whose own upsert fails is rolled back to the
// savepoint and skipped.
func (s *SyncStore) applyQuotes(
	ctx context.Context,
	tx pgx.Tx,
	records []scrape.Record,
	tagIDs map[int]int64,
	authorIDs map[[2]string]int64,
	stats *store.SyncStats,
) error {
	for _, rec := range records {
		authorID, ok := authorIDs[[2]string{rec.FirstName, rec.LastName}]
		if !ok {
			s.logger.Warn("author missing for quote, skipping record",
				zap.String("first_name", rec.FirstName),
				zap.String("last_name", rec.LastName),
			)
			stats.SkippedRecords++
			continue
		}

		links := 0
		applied, err := s.withSavepoint(ctx, tx, func() error {
			var quoteID int64
			if err := tx.QueryRow(ctx, upsertQuoteSQL, rec.Text, authorID).Scan(&quoteID); err != nil {
				return err
			}
			for _, runID := range rec.TagIDs {
				tagID, ok := tagIDs[runID]
				if !ok {
					// Tag upsert failed earlier in this run; leave the link out.
					continue
				}
				if _, err := tx.Exec(ctx, upsertLinkSQL, quoteID, tagID); err != nil {
					return err
				}
				links++
			}
			return nil
		})
		if err != nil {
			return err
		}
		if !applied {
			stats.SkippedRecords++
			continue
		}
		stats.Quotes++
		stats.Links += links
	}
	return nil
}

// withSavepoint runs fn inside a savepoint. If fn fails, the savepoint is
// rolled back, the failure is logged, and (false, nil) is returned so the
// caller can move on; the transaction stays usable. An error from the
// savepoint machinery itself means the store connection is gone and aborts
// the whole run.
func (s *SyncStore) withSavepoint(ctx context.Context, tx pgx.Tx, fn func() error) (bool, error) {
	if _, err := tx.Exec(ctx, savepointSQL); err != nil {
		return false, fmt.Errorf("create savepoint: %w", err)
	}
	if err := fn(); err != nil {
		s.logger.Warn("record upsert failed, skipping", zap.Error(err))
		if _, rbErr := tx.Exec(ctx, rollbackToSQL); rbErr != nil {
			return false, fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
		return false, nil
	}
	if _, err := tx.Exec(ctx, releaseSQL); err != nil {
		return false, fmt.Errorf("release savepoint: %w", err)
	}
	return true, nil
}
