package pagequery

// Storefront page queries. Both backends resolve these as CSS selectors.
const (
	// Product detail region; group discovery is scoped here to avoid
	// cross-talk with "related products" widgets elsewhere on the page.
	QueryDetailRegion Query = ".container-right-content"

	QuerySlicingGroups Query = ".container-right-content .slicing-attributes"
	QueryGroupTitle    Query = ".slc-title"
	QueryGroupOption   Query = "a"

	QuerySecondaryGroups   Query = `.container-right-content [class*="-variant-wrapper"]`
	QuerySecondaryTitle    Query = `[class*="-variant-title--bold"]`
	QuerySecondaryOption   Query = ".sp-itm:not(.so)"
	QuerySecondarySelected Query = ".sp-itm.selected"
	QuerySizeGroup         Query = ".size-variant-wrapper"

	QueryTitle         Query = ".pr-new-br"
	QueryBrandSpan     Query = ".pr-new-br > span"
	QueryBrandLink     Query = ".pr-new-br > a"
	QueryDescription   Query = ".detail-desc-list"
	QueryImages        Query = ".gallery-container .product-slide img"
	QueryPropertyItems Query = ".detail-attr-container .detail-attr-item"

	QueryFeaturedPriceBox Query = ".container-right-content .featured-price-box"
	QueryRegularPrice     Query = ".container-right-content .featured-price-box .prc-org"
	QueryFeaturedPrice    Query = ".container-right-content .featured-price-box .prc-dsc"
	QueryPlainPrice       Query = ".container-right-content .product-price-container"

	QueryBasketButton  Query = ".product-button-container .add-to-basket"
	QuerySoldOutButton Query = ".product-button-container .sold-out"

	QueryListingCards     Query = ".p-card-wrppr a"
	QueryListingContainer Query = ".prdct-cntnr-wrppr"
)

// RemovableOverlays are interstitials deleted before extraction. Removal is
// best-effort; extraction proceeds on a cluttered page if it fails.
var RemovableOverlays = []Query{
	"#onetrust-consent-sdk",
	"#gender-popup-modal",
	".onboarding",
}
