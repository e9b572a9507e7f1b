package scrape

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the quotes site. The listing selectors follow the structure
// of a quote block; the author selectors follow the detail page.
const (
	listingBlockSel   = "div.quote"
	quoteTextSel      = "span.text"
	quoteAuthorSel    = "small.author"
	quoteTagSel       = "a.tag"
	authorBornDateSel = "span.author-born-date"
	authorBornLocSel  = "span.author-born-location"
	authorDescSel     = "div.author-description"
)

// ParseListing extracts the quote blocks from a listing page in document
// order. An empty slice means the page carries no quotes, which is the
// crawl-termination signal.
func ParseListing(markup []byte) ([]ListingItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse listing markup: %w", err)
	}

	var items []ListingItem
	doc.Find(listingBlockSel).Each(func(_ int, blk *goquery.Selection) {
		text := strings.TrimSpace(blk.Find(quoteTextSel).First().Text())
		author := strings.TrimSpace(blk.Find(quoteAuthorSel).First().Text())
		if text == "" || author == "" {
			return
		}
		// The first link in a quote block is the author's "(about)" page.
		href, _ := blk.Find("a[href]").First().Attr("href")

		var tags []string
		blk.Find(quoteTagSel).Each(func(_ int, a *goquery.Selection) {
			if tag := strings.TrimSpace(a.Text()); tag != "" {
				tags = append(tags, tag)
			}
		})

		items = append(items, ListingItem{
			QuoteText:  text,
			AuthorName: author,
			AuthorURL:  href,
			Tags:       tags,
		})
	})
	return items, nil
}

// ParseAuthorDetail extracts the biography fields from an author page. It
// returns nil when the expected structure is absent so the caller can skip
// the record instead of persisting partial author data.
func ParseAuthorDetail(markup []byte) *AuthorDetail {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil
	}

	born := doc.Find(authorBornDateSel).First()
	loc := doc.Find(authorBornLocSel).First()
	desc := doc.Find(authorDescSel).First()
	if born.Length() == 0 || loc.Length() == 0 || desc.Length() == 0 {
		return nil
	}

	return &AuthorDetail{
		BornDate:     strings.TrimSpace(born.Text()),
		BornLocation: strings.TrimSpace(loc.Text()),
		Description:  strings.TrimSpace(desc.Text()),
	}
}

// SplitName cuts a display name at the first whitespace boundary: the token
// before it is the given name, the remainder (possibly empty) the family
// name. This is a lossy heuristic for multi-part given names: "Mary Ann
// Smith" splits as ("Mary", "Ann Smith").
func SplitName(display string) (first, last string) {
	display = strings.TrimSpace(display)
	i := strings.IndexFunc(display, unicode.IsSpace)
	if i < 0 {
		return display, ""
	}
	return display[:i], strings.TrimSpace(display[i:])
}
