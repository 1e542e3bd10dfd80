package scrape

import (
	"fmt"
	"strings"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
)

// Discovery is the set of slicing-attribute groups found on a loaded product
// page, in page order, with titles normalized.
type Discovery struct {
	Groups []pagequery.Group
	// HasSizeGroup reports whether the page exposes a dedicated size group
	// distinct from the slicing groups.
	HasSizeGroup bool
}

// NormalizeGroupTitle strips a trailing colon, trims, and lower-cases a
// group title so it is stable across page states.
func NormalizeGroupTitle(title string) string {
	title = strings.ReplaceAll(title, ":", "")
	return strings.ToLower(strings.TrimSpace(title))
}

// Discover finds the non-empty slicing-attribute groups on the current page
// state. Groups whose markup is present but carry no visible options are
// skipped, which distinguishes inert variant markup from true multi-variant
// pages: zero discovered groups means the product is SIMPLE.
func Discover(pg pagequery.Page) (*Discovery, error) {
	raw, err := pg.QueryGroups()
	if err != nil {
		return nil, fmt.Errorf("group discovery failed: %w", err)
	}

	groups := make([]pagequery.Group, 0, len(raw))
	for _, group := range raw {
		if len(group.Options) == 0 {
			continue
		}
		group.Title = NormalizeGroupTitle(group.Title)
		groups = append(groups, group)
	}

	hasSize, err := pg.Exists(pagequery.QuerySizeGroup)
	if err != nil {
		return nil, fmt.Errorf("size group probe failed: %w", err)
	}

	return &Discovery{Groups: groups, HasSizeGroup: hasSize}, nil
}
