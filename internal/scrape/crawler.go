package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/mquintana/quotesync/internal/fetcher"
)

// Harvester drives the fetcher and parser across listing pages until the
// site is exhausted, assembling one Record per quote. The crawl is strictly
// sequential: one page at a time, one author detail at a time.
type Harvester struct {
	baseURL string
	fetch   fetcher.Fetcher
	logger  *zap.Logger
}

// NewHarvester builds a Harvester rooted at baseURL.
func NewHarvester(baseURL string, f fetcher.Fetcher, logger *zap.Logger) *Harvester {
	return &Harvester{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch:   f,
		logger:  logger,
	}
}

// Run performs one full crawl from page 1. An empty listing page ends the
// run normally; a listing fetch failure ends it early with the records
// gathered so far and EndedEarly set, so the caller can tell truncation from
// exhaustion. Items whose author detail cannot be fetched or parsed are
// logged and skipped, never null-padded.
func (h *Harvester) Run(ctx context.Context) Result {
	result := Result{Tags: NewTagSet()}
	detailCache := make(map[string]*AuthorDetail)

	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s/page/%d/", h.baseURL, page)
		markup, err := h.fetch.Fetch(ctx, pageURL)
		if err != nil {
			h.logger.Warn("listing fetch failed, ending crawl early",
				zap.String("url", pageURL),
				zap.Int("status", fetcher.StatusOf(err)),
				zap.Error(err),
			)
			result.EndedEarly = true
			return result
		}
		result.PagesFetched++

		items, err := ParseListing(markup)
		if err != nil {
			h.logger.Warn("listing parse failed, ending crawl early",
				zap.String("url", pageURL), zap.Error(err))
			result.EndedEarly = true
			return result
		}
		if len(items) == 0 {
			h.logger.Info("no more quotes found",
				zap.Int("pages", result.PagesFetched),
				zap.Int("records", len(result.Records)),
			)
			return result
		}

		for _, item := range items {
			record, ok := h.assembleRecord(ctx, item, result.Tags, detailCache)
			if !ok {
				result.DetailSkips++
				continue
			}
			result.Records = append(result.Records, record)
		}
	}
}

func (h *Harvester) assembleRecord(
	ctx context.Context,
	item ListingItem,
	tags *TagSet,
	detailCache map[string]*AuthorDetail,
) (Record, bool) {
	authorURL := h.resolveURL(item.AuthorURL)
	detail, ok := detailCache[authorURL]
	if !ok {
		detail = h.fetchAuthorDetail(ctx, authorURL)
		if detail == nil {
			h.logger.Warn("author detail unavailable, skipping quote",
				zap.String("author", item.AuthorName),
				zap.String("url", authorURL),
			)
			return Record{}, false
		}
		detailCache[authorURL] = detail
	}

	first, last := SplitName(item.AuthorName)
	tagIDs := make([]int, 0, len(item.Tags))
	for _, tag := range item.Tags {
		tagIDs = append(tagIDs, tags.Assign(tag))
	}

	return Record{
		Text:         item.QuoteText,
		FirstName:    first,
		LastName:     last,
		AuthorURL:    authorURL,
		BornDate:     detail.BornDate,
		BornLocation: detail.BornLocation,
		Description:  detail.Description,
		Tags:         item.Tags,
		TagIDs:       tagIDs,
	}, true
}

func (h *Harvester) fetchAuthorDetail(ctx context.Context, authorURL string) *AuthorDetail {
	markup, err := h.fetch.Fetch(ctx, authorURL)
	if err != nil {
		h.logger.Warn("author detail fetch failed",
			zap.String("url", authorURL),
			zap.Int("status", fetcher.StatusOf(err)),
			zap.Error(err),
		)
		return nil
	}
	return ParseAuthorDetail(markup)
}

func (h *Harvester) resolveURL(href string) string {
	if href == "" {
		return h.baseURL
	}
	base, err := url.Parse(h.baseURL + "/")
	if err != nil {
		return h.baseURL + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return h.baseURL + href
	}
	return base.ResolveReference(ref).String()
}
