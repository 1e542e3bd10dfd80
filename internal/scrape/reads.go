package scrape

import (
	"strings"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
	"github.com/evokelektrique/trendyol-scrapper/internal/price"
)

// thumbnailPrefix is the resize segment the gallery injects into image URLs.
const thumbnailPrefix = "mnresize/128/192/"

// readOptionalText reads a single text field, returning nil when the element
// is absent or unreadable. Field extraction never aborts the caller.
func readOptionalText(pg pagequery.Page, q pagequery.Query) *string {
	text, err := pg.ReadText(q)
	if err != nil || text == "" {
		return nil
	}
	return &text
}

// readBrand reads the brand from the title block, preferring the span child
// and falling back to the anchor.
func readBrand(pg pagequery.Page) *string {
	if brand := readOptionalText(pg, pagequery.QueryBrandSpan); brand != nil {
		return brand
	}
	return readOptionalText(pg, pagequery.QueryBrandLink)
}

// readImages reads gallery image URLs in document order with the thumbnail
// resize prefix stripped.
func readImages(pg pagequery.Page) []string {
	sources, err := pg.ReadAttr(pagequery.QueryImages, "src")
	if err != nil {
		return []string{}
	}

	images := make([]string, 0, len(sources))
	for _, src := range sources {
		images = append(images, strings.Replace(src, thumbnailPrefix, "", 1))
	}
	return images
}

// readProperties reads the spec-attribute key/value pairs, lower-cased.
func readProperties(pg pagequery.Page) map[string]string {
	pairs, err := pg.ReadPairs(pagequery.QueryPropertyItems)
	if err != nil || pairs == nil {
		return map[string]string{}
	}
	return pairs
}

// readPrice reads the regular and featured amounts from the current page
// state. A featured-price box carries both the discounted and the original
// amount; the plain price container carries only the regular one.
func readPrice(pg pagequery.Page) Price {
	featured, err := pg.Exists(pagequery.QueryFeaturedPriceBox)
	if err == nil && featured {
		return Price{
			Regular:  price.Normalize(readOptionalText(pg, pagequery.QueryRegularPrice)),
			Featured: price.Normalize(readOptionalText(pg, pagequery.QueryFeaturedPrice)),
		}
	}

	return Price{
		Regular:  price.Normalize(readOptionalText(pg, pagequery.QueryPlainPrice)),
		Featured: price.Normalize(nil),
	}
}

// readAvailability reads purchasability from the buy-button affordances.
// When neither an add-to-basket nor a sold-out affordance is found the
// product is reported available: a missing sold-out signal is more often a
// markup miss than confirmed stock.
func readAvailability(pg pagequery.Page) bool {
	if basket, err := pg.Exists(pagequery.QueryBasketButton); err == nil && basket {
		return true
	}
	if soldOut, err := pg.Exists(pagequery.QuerySoldOutButton); err == nil && soldOut {
		return false
	}
	return true
}
