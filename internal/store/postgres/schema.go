package postgres

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tag (
    tag_id SERIAL PRIMARY KEY,
    label VARCHAR(255) UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS author (
    author_id SERIAL PRIMARY KEY,
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255) NOT NULL,
    url VARCHAR(255),
    born_date VARCHAR(255),
    born_location VARCHAR(255),
    description TEXT,
    UNIQUE (first_name, last_name)
);

CREATE TABLE IF NOT EXISTS quote (
    quote_id SERIAL PRIMARY KEY,
    text TEXT UNIQUE NOT NULL,
    author_id INTEGER NOT NULL REFERENCES author(author_id)
);

CREATE TABLE IF NOT EXISTS quote_tag (
    quote_id INTEGER NOT NULL REFERENCES quote(quote_id),
    tag_id INTEGER NOT NULL REFERENCES tag(tag_id),
    PRIMARY KEY (quote_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_author_names ON author (lower(first_name), lower(last_name));
CREATE INDEX IF NOT EXISTS idx_quote_author ON quote (author_id);
`

// Migrate creates the four tables if they do not exist. It is safe to run on
// every startup.
func Migrate(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
