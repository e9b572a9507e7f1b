// Package store declares the domain rows and repository interfaces for the
// normalized quote store.
package store

import (
	"context"
	"errors"

	"github.com/mquintana/quotesync/internal/scrape"
)

// ErrNotFound signals that the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Tag models the tag table. ID is store-assigned; the run-local ids carried
// by crawl records never reach the database.
type Tag struct {
	ID    int64
	Label string
}

// Author models the author table. Identity is the (FirstName, LastName)
// pair; the remaining fields are descriptive and overwritten on re-sync.
type Author struct {
	ID           int64
	FirstName    string
	LastName     string
	URL          string
	BornDate     string
	BornLocation string
	Description  string
}

// QuoteView is a quote joined with its author and aggregated tag labels, the
// shape the dashboard reads.
type QuoteView struct {
	ID        int64
	Text      string
	AuthorID  int64
	FirstName string
	LastName  string
	AuthorURL string
	Tags      []string
}

// SyncStats counts the rows touched by one synchronization.
type SyncStats struct {
	Tags           int
	Authors        int
	Quotes         int
	Links          int
	SkippedRecords int
}

// SyncApplier applies one crawl run's output to the store as a single
// all-or-nothing transaction.
type SyncApplier interface {
	// Apply upserts tags, then authors, then quotes and their tag links.
	// Per-record failures are logged and skipped; only a store-level failure
	// returns an error, after rolling the transaction back.
	Apply(ctx context.Context, records []scrape.Record, tags []scrape.TagLabel) (SyncStats, error)
}

// QuoteReader is the read-only interface exposed to the dashboard.
type QuoteReader interface {
	// ListQuotes returns every quote with author fields and tag labels.
	ListQuotes(ctx context.Context) ([]QuoteView, error)
	// ListAuthors returns every author.
	ListAuthors(ctx context.Context) ([]Author, error)
	// GetAuthor loads a single author or returns ErrNotFound.
	GetAuthor(ctx context.Context, authorID int64) (Author, error)
	// ListTags returns every tag.
	ListTags(ctx context.Context) ([]Tag, error)
	// QuotesByAuthorID filters quotes to a single author.
	QuotesByAuthorID(ctx context.Context, authorID int64) ([]QuoteView, error)
	// QuotesByAuthorName filters by case-insensitive substring over first or
	// last name.
	QuotesByAuthorName(ctx context.Context, name string) ([]QuoteView, error)
	// QuotesByTag filters by tag label, exact or substring.
	QuotesByTag(ctx context.Context, label string, exact bool) ([]QuoteView, error)
}
