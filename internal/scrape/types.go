// Package scrape implements the crawl side of quotesync: listing and
// author-page parsing, run-scoped tag identity, and the sequential harvester
// that assembles quote records from the source site.
package scrape

// ListingItem is one quote block extracted from a listing page. AuthorURL is
// relative, exactly as it appears in the markup.
type ListingItem struct {
	QuoteText  string
	AuthorName string
	AuthorURL  string
	Tags       []string
}

// AuthorDetail holds the free-text biography fields from an author page.
type AuthorDetail struct {
	BornDate     string
	BornLocation string
	Description  string
}

// Record is one fully assembled quote: listing fields joined with the
// author's detail page and the run-local tag ids.
type Record struct {
	Text         string
	FirstName    string
	LastName     string
	AuthorURL    string
	BornDate     string
	BornLocation string
	Description  string
	Tags         []string
	TagIDs       []int
}

// Result is the output of one crawl run. Records preserve page and listing
// order. EndedEarly reports that a listing fetch failed before a page came
// back empty, so the dataset may be truncated rather than exhausted.
type Result struct {
	Records      []Record
	Tags         *TagSet
	PagesFetched int
	DetailSkips  int
	EndedEarly   bool
}
