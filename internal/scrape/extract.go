package scrape

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
	"github.com/evokelektrique/trendyol-scrapper/internal/price"
)

// Extractor orchestrates a full product fetch: page load, non-variant field
// extraction, product-type classification, and variant traversal.
type Extractor struct {
	traverser *Traverser
	logger    *slog.Logger
}

// NewExtractor builds a product extractor around the given traverser.
func NewExtractor(traverser *Traverser, logger *slog.Logger) *Extractor {
	return &Extractor{
		traverser: traverser,
		logger:    logger.With("component", "extractor"),
	}
}

// Extract fetches one product page and returns its full record. Individual
// field extraction failures leave the field null and never abort the whole
// extraction; only navigation failures are fatal.
func (e *Extractor) Extract(ctx context.Context, pg pagequery.Page, url string) (*Product, error) {
	if err := e.load(ctx, pg, url); err != nil {
		return nil, err
	}

	product := e.newRecord(url)
	product.Title = readOptionalText(pg, pagequery.QueryTitle)
	product.Brand = readBrand(pg)
	product.Description = readOptionalText(pg, pagequery.QueryDescription)
	product.Images = readImages(pg)
	product.Properties = readProperties(pg)

	if err := e.classifyAndFill(ctx, pg, product, nil); err != nil {
		return nil, err
	}

	e.logger.Info("product extracted",
		"url", url,
		"type", product.Type,
		"variations", len(product.Variations))

	return product, nil
}

// ExtractFast fetches a product page but skips the top-level descriptive
// fields (the caller already knows them) and restricts variant traversal to
// the given target option labels.
func (e *Extractor) ExtractFast(ctx context.Context, pg pagequery.Page, url string, targets []string) (*Product, error) {
	if err := e.load(ctx, pg, url); err != nil {
		return nil, err
	}

	product := e.newRecord(url)
	if err := e.classifyAndFill(ctx, pg, product, targets); err != nil {
		return nil, err
	}

	e.logger.Info("product fast-extracted",
		"url", url,
		"type", product.Type,
		"targets", len(targets),
		"variations", len(product.Variations))

	return product, nil
}

func (e *Extractor) load(ctx context.Context, pg pagequery.Page, url string) error {
	if err := pg.Goto(ctx, url); err != nil {
		return fmt.Errorf("failed to load product page: %w", err)
	}

	// Consent walls and popups sit above the buy box; removal failing is
	// non-fatal, extraction proceeds on the cluttered page.
	if err := pg.Remove(pagequery.RemovableOverlays...); err != nil {
		e.logger.Debug("overlay removal failed", "url", url, "error", err)
	}

	return nil
}

func (e *Extractor) newRecord(url string) *Product {
	return &Product{
		SourceURL:     url,
		Images:        []string{},
		Properties:    map[string]string{},
		CurrencyCode:  price.CurrencyCode,
		Variations:    []Variant{},
		RecentReviews: []any{},
	}
}

// classifyAndFill classifies the page as SIMPLE or VARIABLE and fills the
// type-dependent half of the record. targets != nil selects fast traversal.
func (e *Extractor) classifyAndFill(ctx context.Context, pg pagequery.Page, product *Product, targets []string) error {
	discovery, err := Discover(pg)
	if err != nil {
		return fmt.Errorf("failed to classify product: %w", err)
	}

	if len(discovery.Groups) == 0 {
		product.Type = TypeSimple
		p := readPrice(pg)
		product.Price = &p
		available := readAvailability(pg)
		product.Available = &available
		return nil
	}

	product.Type = TypeVariable

	var variants []Variant
	if targets != nil {
		variants, err = e.traverser.Targeted(ctx, pg, targets)
	} else {
		variants, err = e.traverser.Exhaustive(ctx, pg)
	}
	if err != nil {
		return fmt.Errorf("variant traversal failed: %w", err)
	}

	product.Variations = variants
	return nil
}
