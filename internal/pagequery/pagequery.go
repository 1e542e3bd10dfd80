// Package pagequery models the capabilities the extractors need from a loaded
// storefront page as a narrow interface, so any browser-automation backend is
// substitutable for another and the extraction logic never touches DOM details
// directly.
package pagequery

import (
	"context"
)

// Query is a named page query. Backends resolve it to whatever addressing
// scheme they use; callers treat it as opaque.
type Query string

// Option is a handle to one selectable variant option. Handles are valid only
// within the lifetime of the page load that produced them; callers must
// re-query after any navigation.
type Option interface {
	// Label returns the option's accessible title.
	Label() (string, error)
	// Text returns the option's visible text.
	Text() (string, error)
	// Selected reports whether the option is currently the active choice.
	Selected() (bool, error)
	// Activate simulates a user selecting the option.
	Activate() error
}

// Group is one slicing-attribute cluster with its selectable options, in
// page order. The title is raw page text; normalization happens upstream.
type Group struct {
	Title   string
	Options []Option
}

// SecondaryGroup is a dependent attribute cluster (for example a size picker
// that only appears once a color is chosen). Only its current selection and
// option labels are readable; it is never activated directly.
type SecondaryGroup struct {
	Title    string
	Selected string
	Options  []string
}

// Page is the query capability the extractors run against. A Page is
// exclusively owned by the worker that opened it and must be closed on every
// exit path.
type Page interface {
	// Goto navigates to the URL and waits for network quiescence.
	Goto(ctx context.Context, url string) error
	// CurrentURL returns the URL of the currently loaded document.
	CurrentURL() string
	// ReadText returns the trimmed text of the first match, or "" when the
	// query matches nothing.
	ReadText(q Query) (string, error)
	// ReadTexts returns the trimmed text of every match in document order.
	ReadTexts(q Query) ([]string, error)
	// ReadAttr returns the named attribute of every match in document order,
	// skipping matches without the attribute.
	ReadAttr(q Query, attr string) ([]string, error)
	// ReadPairs reads key/value span pairs from each match, lower-cased.
	ReadPairs(q Query) (map[string]string, error)
	// Exists reports whether the query matches at least one element.
	Exists(q Query) (bool, error)
	// QueryGroups returns the slicing-attribute groups scoped to the product
	// detail region, skipping containers whose rendered text is empty.
	QueryGroups() ([]Group, error)
	// SecondaryGroups returns the dependent groups visible in the current
	// page state, skipping empty containers.
	SecondaryGroups() ([]SecondaryGroup, error)
	// ScrollToEnd scrolls the matched container to its end to trigger
	// incremental loading.
	ScrollToEnd(q Query) error
	// Remove deletes matching elements from the document, best-effort.
	Remove(qs ...Query) error
	// Close releases the page and its browser resources.
	Close() error
}
