package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `
<html><body>
<div class="quote">
  <span class="text">“Be yourself; everyone else is already taken.”</span>
  <span>by <small class="author">Oscar Wilde</small>
  <a href="/author/Oscar-Wilde">(about)</a></span>
  <div class="tags">
    <a class="tag" href="/tag/be-yourself/">be-yourself</a>
    <a class="tag" href="/tag/honesty/">honesty</a>
  </div>
</div>
<div class="quote">
  <span class="text">“So many books, so little time.”</span>
  <span>by <small class="author">Frank Zappa</small>
  <a href="/author/Frank-Zappa">(about)</a></span>
  <div class="tags">
    <a class="tag" href="/tag/books/">books</a>
    <a class="tag" href="/tag/humor/">humor</a>
  </div>
</div>
</body></html>`

const authorPage = `
<html><body>
<div class="author-details">
  <h3 class="author-title">Oscar Wilde</h3>
  <p>Born: <span class="author-born-date">October 16, 1854</span>
  <span class="author-born-location">in Dublin, Ireland</span></p>
  <div class="author-description">
      An Irish poet and playwright.
  </div>
</div>
</body></html>`

func TestParseListing(t *testing.T) {
	t.Parallel()

	items, err := ParseListing([]byte(listingPage))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "“Be yourself; everyone else is already taken.”", items[0].QuoteText)
	assert.Equal(t, "Oscar Wilde", items[0].AuthorName)
	assert.Equal(t, "/author/Oscar-Wilde", items[0].AuthorURL)
	assert.Equal(t, []string{"be-yourself", "honesty"}, items[0].Tags)

	assert.Equal(t, "Frank Zappa", items[1].AuthorName)
	assert.Equal(t, []string{"books", "humor"}, items[1].Tags)
}

func TestParseListingEmptyPage(t *testing.T) {
	t.Parallel()

	items, err := ParseListing([]byte(`<html><body><p>No quotes found!</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseAuthorDetail(t *testing.T) {
	t.Parallel()

	detail := ParseAuthorDetail([]byte(authorPage))
	require.NotNil(t, detail)
	assert.Equal(t, "October 16, 1854", detail.BornDate)
	assert.Equal(t, "in Dublin, Ireland", detail.BornLocation)
	assert.Equal(t, "An Irish poet and playwright.", detail.Description)
}

func TestParseAuthorDetailMissingStructure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
	}{
		{"empty page", `<html><body></body></html>`},
		{
			"missing description",
			`<html><body><span class="author-born-date">x</span>
			 <span class="author-born-location">y</span></body></html>`,
		},
		{
			"missing born date",
			`<html><body><span class="author-born-location">y</span>
			 <div class="author-description">z</div></body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Nil(t, ParseAuthorDetail([]byte(tt.markup)))
		})
	}
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		display string
		first   string
		last    string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Plato", "Plato", ""},
		// Known limitation: the first token is always the given name.
		{"Mary Ann Smith", "Mary", "Ann Smith"},
		{"  Oscar Wilde  ", "Oscar", "Wilde"},
		// Any whitespace is a boundary, not just a plain space.
		{"Jane\tDoe", "Jane", "Doe"},
		{"Jane\u00a0Doe", "Jane", "Doe"},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.display)
		assert.Equal(t, tt.first, first, "display %q", tt.display)
		assert.Equal(t, tt.last, last, "display %q", tt.display)
	}
}
