package scrape

import (
	"github.com/evokelektrique/trendyol-scrapper/internal/price"
)

// ProductType classifies a product page by its variant markup.
type ProductType string

const (
	// TypeSimple is a single-SKU page with one price and one availability.
	TypeSimple ProductType = "SIMPLE"
	// TypeVariable is a page exposing at least one non-empty slicing group.
	TypeVariable ProductType = "VARIABLE"
)

// Price holds the regular and featured (discounted) amounts read from a page
// state. Either field may be null, or raw text when it failed to parse.
type Price struct {
	Regular  price.Amount `json:"regular"`
	Featured price.Amount `json:"featured"`
}

// Variant is one reached combination of attribute selections.
type Variant struct {
	// Attributes maps normalized attribute-group titles to the selected
	// option label. Exactly one entry per group observed at capture time.
	Attributes map[string]string `json:"attributes"`
	// Images as observed after the combination was activated. Empty in fast
	// mode, which skips image re-extraction.
	Images    []string `json:"images"`
	Price     Price    `json:"price"`
	Available bool     `json:"is_available"`
}

// Product is one extraction result for a page. Price and Available are set
// only for SIMPLE products; Variations is non-empty only for VARIABLE ones.
type Product struct {
	SourceURL     string            `json:"source_url"`
	Type          ProductType       `json:"type"`
	Title         *string           `json:"title"`
	Brand         *string           `json:"brand"`
	Description   *string           `json:"description"`
	Images        []string          `json:"images"`
	Properties    map[string]string `json:"properties"`
	Price         *Price            `json:"price,omitempty"`
	CurrencyCode  string            `json:"currency_code"`
	Available     *bool             `json:"is_available,omitempty"`
	Variations    []Variant         `json:"variations"`
	RecentReviews []any             `json:"recent_reviews"`
}
