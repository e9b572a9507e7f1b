package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mquintana/quotesync/internal/store"
)

const (
	quoteViewSelect = `
		SELECT quote.quote_id, quote.text, author.author_id, author.first_name,
		       author.last_name, author.url, array_agg(tag.label ORDER BY tag.label)
		FROM quote
		JOIN author ON quote.author_id = author.author_id
		JOIN quote_tag ON quote.quote_id = quote_tag.quote_id
		JOIN tag ON quote_tag.tag_id = tag.tag_id
	`
	quoteViewGroup = `
		GROUP BY quote.quote_id, author.author_id
		ORDER BY quote.quote_id;
	`

	listQuotesSQL = quoteViewSelect + quoteViewGroup

	quotesByAuthorIDSQL = quoteViewSelect + `
		WHERE author.author_id = $1
	` + quoteViewGroup

	// Site-derived text is always bound, never interpolated.
	quotesByAuthorNameSQL = quoteViewSelect + `
		WHERE author.first_name ILIKE '%' || $1 || '%'
		   OR author.last_name ILIKE '%' || $1 || '%'
	` + quoteViewGroup

	quotesByTagSQL = quoteViewSelect + `
		WHERE quote.quote_id IN (
			SELECT quote_tag.quote_id
			FROM quote_tag
			JOIN tag ON quote_tag.tag_id = tag.tag_id
			WHERE tag.label = $1
		)
	` + quoteViewGroup

	quotesByTagSubstringSQL = quoteViewSelect + `
		WHERE quote.quote_id IN (
			SELECT quote_tag.quote_id
			FROM quote_tag
			JOIN tag ON quote_tag.tag_id = tag.tag_id
			WHERE tag.label ILIKE '%' || $1 || '%'
		)
	` + quoteViewGroup

	listAuthorsSQL = `
		SELECT author_id, first_name, last_name, url, born_date, born_location, description
		FROM author
		ORDER BY last_name, first_name;
	`

	listTagsSQL = `
		SELECT tag_id, label
		FROM tag
		ORDER BY label;
	`
)

// ReadStore implements the read-only store.QuoteReader interface consumed by
// the dashboard. It never mutates the store.
type ReadStore struct {
	pool Pool
}

// NewReadStore builds a ReadStore on the shared pool.
func NewReadStore(pool Pool) *ReadStore {
	return &ReadStore{pool: pool}
}

var _ store.QuoteReader = (*ReadStore)(nil)

// ListQuotes returns every quote joined with its author and tag labels.
func (s *ReadStore) ListQuotes(ctx context.Context) ([]store.QuoteView, error) {
	return s.queryQuotes(ctx, listQuotesSQL)
}

// QuotesByAuthorID filters quotes to a single author.
func (s *ReadStore) QuotesByAuthorID(ctx context.Context, authorID int64) ([]store.QuoteView, error) {
	return s.queryQuotes(ctx, quotesByAuthorIDSQL, authorID)
}

// QuotesByAuthorName filters by case-insensitive substring over first or
// last name.
func (s *ReadStore) QuotesByAuthorName(ctx context.Context, name string) ([]store.QuoteView, error) {
	return s.queryQuotes(ctx, quotesByAuthorNameSQL, name)
}

// QuotesByTag filters by tag label, exact or substring.
func (s *ReadStore) QuotesByTag(ctx context.Context, label string, exact bool) ([]store.QuoteView, error) {
	if exact {
		return s.queryQuotes(ctx, quotesByTagSQL, label)
	}
	return s.queryQuotes(ctx, quotesByTagSubstringSQL, label)
}

func (s *ReadStore) queryQuotes(ctx context.Context, sql string, args ...any) ([]store.QuoteView, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []store.QuoteView
	for rows.Next() {
		var q store.QuoteView
		if err := rows.Scan(
			&q.ID,
			&q.Text,
			&q.AuthorID,
			&q.FirstName,
			&q.LastName,
			&q.AuthorURL,
			&q.Tags,
		); err != nil {
			return nil, fmt.Errorf("scan quote row: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote rows: %w", err)
	}
	return quotes, nil
}

// ListAuthors returns every author.
func (s *ReadStore) ListAuthors(ctx context.Context) ([]store.Author, error) {
	rows, err := s.pool.Query(ctx, listAuthorsSQL)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	var authors []store.Author
	for rows.Next() {
		var a store.Author
		if err := rows.Scan(
			&a.ID,
			&a.FirstName,
			&a.LastName,
			&a.URL,
			&a.BornDate,
			&a.BornLocation,
			&a.Description,
		); err != nil {
			return nil, fmt.Errorf("scan author row: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author rows: %w", err)
	}
	return authors, nil
}

// ListTags returns every tag.
func (s *ReadStore) ListTags(ctx context.Context) ([]store.Tag, error) {
	rows, err := s.pool.Query(ctx, listTagsSQL)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []store.Tag
	for rows.Next() {
		var t store.Tag
		if err := rows.Scan(&t.ID, &t.Label); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag rows: %w", err)
	}
	return tags, nil
}

// GetAuthor loads one author or returns store.ErrNotFound.
func (s *ReadStore) GetAuthor(ctx context.Context, authorID int64) (store.Author, error) {
	const sql = `
		SELECT author_id, first_name, last_name, url, born_date, born_location, description
		FROM author
		WHERE author_id = $1;
	`
	var a store.Author
	err := s.pool.QueryRow(ctx, sql, authorID).Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.URL,
		&a.BornDate,
		&a.BornLocation,
		&a.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Author{}, store.ErrNotFound
		}
		return store.Author{}, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}
