package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mquintana/quotesync/internal/store"
)

func quoteViewColumns() []string {
	return []string{"quote_id", "text", "author_id", "first_name", "last_name", "url", "labels"}
}

func TestListQuotes(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT quote.quote_id").
		WillReturnRows(pgxmock.NewRows(quoteViewColumns()).
			AddRow(int64(1), "Be yourself.", int64(2), "Jane", "Doe",
				"https://quotes.test/author/Jane-Doe", []string{"life", "wisdom"}).
			AddRow(int64(2), "Stay yourself.", int64(2), "Jane", "Doe",
				"https://quotes.test/author/Jane-Doe", []string{"wisdom"}))

	s := NewReadStore(mock)
	quotes, err := s.ListQuotes(context.Background())
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, "Be yourself.", quotes[0].Text)
	assert.Equal(t, []string{"life", "wisdom"}, quotes[0].Tags)
	assert.Equal(t, int64(2), quotes[1].AuthorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotesByAuthorID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("WHERE author.author_id").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(quoteViewColumns()).
			AddRow(int64(1), "Be yourself.", int64(2), "Jane", "Doe",
				"https://quotes.test/author/Jane-Doe", []string{"wisdom"}))

	s := NewReadStore(mock)
	quotes, err := s.QuotesByAuthorID(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, int64(2), quotes[0].AuthorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotesByAuthorNameBindsPattern(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("ILIKE").
		WithArgs("jane").
		WillReturnRows(pgxmock.NewRows(quoteViewColumns()).
			AddRow(int64(1), "Be yourself.", int64(2), "Jane", "Doe",
				"https://quotes.test/author/Jane-Doe", []string{"wisdom"}))

	s := NewReadStore(mock)
	quotes, err := s.QuotesByAuthorName(context.Background(), "jane")
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotesByTagExactAndSubstring(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE tag.label = \$1`).
		WithArgs("wisdom").
		WillReturnRows(pgxmock.NewRows(quoteViewColumns()).
			AddRow(int64(1), "Be yourself.", int64(2), "Jane", "Doe",
				"https://quotes.test/author/Jane-Doe", []string{"wisdom"}))
	mock.ExpectQuery("WHERE tag.label ILIKE").
		WithArgs("wis").
		WillReturnRows(pgxmock.NewRows(quoteViewColumns()))

	s := NewReadStore(mock)

	exact, err := s.QuotesByTag(context.Background(), "wisdom", true)
	require.NoError(t, err)
	require.Len(t, exact, 1)

	fuzzy, err := s.QuotesByTag(context.Background(), "wis", false)
	require.NoError(t, err)
	assert.Empty(t, fuzzy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAuthors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM author").
		WillReturnRows(pgxmock.NewRows(
			[]string{"author_id", "first_name", "last_name", "url", "born_date", "born_location", "description"},
		).AddRow(int64(2), "Jane", "Doe", "https://quotes.test/author/Jane-Doe",
			"May 1, 1900", "in Springfield", "Jane bio"))

	s := NewReadStore(mock)
	authors, err := s.ListAuthors(context.Background())
	require.NoError(t, err)

	require.Len(t, authors, 1)
	assert.Equal(t, "Doe", authors[0].LastName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTags(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM tag").
		WillReturnRows(pgxmock.NewRows([]string{"tag_id", "label"}).
			AddRow(int64(1), "life").
			AddRow(int64(2), "wisdom"))

	s := NewReadStore(mock)
	tags, err := s.ListTags(context.Background())
	require.NoError(t, err)

	require.Len(t, tags, 2)
	assert.Equal(t, "life", tags[0].Label)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAuthorNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM author").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	s := NewReadStore(mock)
	_, err = s.GetAuthor(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListQuotesQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT quote.quote_id").
		WillReturnError(errors.New("connection refused"))

	s := NewReadStore(mock)
	_, err = s.ListQuotes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query quotes")
}

func TestMigrateCreatesSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tag").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, Migrate(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}
