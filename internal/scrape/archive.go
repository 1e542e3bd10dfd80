package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
)

// BaseURL is the storefront root that relative listing links resolve against.
const BaseURL = "https://www.trendyol.com"

// sortParam pins listings to most-recent-first so incremental syncs see new
// products early.
const (
	sortParam      = "sst"
	sortMostRecent = "MOST_RECENT"
)

// ArchiveExtractor paginates a category listing by scroll-triggered
// incremental loading until a link-count threshold is met.
type ArchiveExtractor struct {
	settle SettleStrategy
	logger *slog.Logger
}

// NewArchiveExtractor builds an archive extractor with the given settle
// strategy.
func NewArchiveExtractor(settle SettleStrategy, logger *slog.Logger) *ArchiveExtractor {
	if settle == nil {
		settle = NewFixedDelay(DefaultSettleDelay)
	}
	return &ArchiveExtractor{
		settle: settle,
		logger: logger.With("component", "archive"),
	}
}

// ExtractLinks accumulates listing-card hrefs until at least limit links have
// been seen. Duplicates across scroll iterations are kept; dedup is a
// downstream concern. The loop has no iteration bound of its own, so the
// caller's context deadline bounds the worst case.
func (a *ArchiveExtractor) ExtractLinks(ctx context.Context, pg pagequery.Page, rawURL string, limit int) ([]string, error) {
	target, err := withSortHint(rawURL)
	if err != nil {
		return nil, err
	}

	if err := pg.Goto(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to load archive page: %w", err)
	}
	if err := pg.Remove(pagequery.RemovableOverlays...); err != nil {
		a.logger.Debug("overlay removal failed", "url", target, "error", err)
	}

	links := make([]string, 0, limit)
	for len(links) < limit {
		if err := ctx.Err(); err != nil {
			return links, err
		}

		hrefs, err := pg.ReadAttr(pagequery.QueryListingCards, "href")
		if err != nil {
			return links, fmt.Errorf("failed to read listing links: %w", err)
		}
		links = append(links, hrefs...)

		a.logger.Debug("archive scroll pass", "url", target, "accumulated", len(links))

		if err := pg.ScrollToEnd(pagequery.QueryListingContainer); err != nil {
			return links, fmt.Errorf("failed to scroll listing: %w", err)
		}
		if err := a.settle.Settle(ctx); err != nil {
			return links, err
		}
	}

	return links, nil
}

// ResolveLinks resolves relative hrefs against the storefront base URL.
// Unparseable hrefs are dropped.
func ResolveLinks(links []string) []string {
	base, err := url.Parse(BaseURL)
	if err != nil {
		return links
	}

	resolved := make([]string, 0, len(links))
	for _, link := range links {
		ref, err := url.Parse(link)
		if err != nil {
			continue
		}
		resolved = append(resolved, base.ResolveReference(ref).String())
	}
	return resolved
}

func withSortHint(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid archive url %q: %w", rawURL, err)
	}

	query := parsed.Query()
	query.Set(sortParam, sortMostRecent)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
