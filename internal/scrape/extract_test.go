package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
)

const simpleProductHTML = `
<html><body>
<div id="onetrust-consent-sdk">consent wall</div>
<div class="container-right-content">
	<h1 class="pr-new-br"><span>Marka</span> Pamuklu Tisort</h1>
	<div class="slicing-attributes"></div>
	<div class="product-price-container">129,90 TL</div>
	<div class="product-button-container"><button class="add-to-basket">Sepete Ekle</button></div>
</div>
<div class="detail-desc-list">Yumusak dokulu gunluk tisort.</div>
<div class="gallery-container">
	<div class="product-slide"><img src="https://cdn/mnresize/128/192/one.jpg"></div>
	<div class="product-slide"><img src="https://cdn/two.jpg"></div>
</div>
<div class="detail-attr-container">
	<div class="detail-attr-item"><span>Kumas</span><span>Pamuk</span></div>
</div>
</body></html>`

func newTestExtractor() *Extractor {
	return NewExtractor(NewTraverser(NoSettle{}, testLogger()), testLogger())
}

func TestExtractSimpleProduct(t *testing.T) {
	pg, err := pagequery.NewSnapshotPage(simpleProductHTML)
	require.NoError(t, err)

	product, err := newTestExtractor().Extract(context.Background(), pg, "https://www.trendyol.com/p/123")
	require.NoError(t, err)

	assert.Equal(t, "https://www.trendyol.com/p/123", product.SourceURL)
	assert.Equal(t, TypeSimple, product.Type)
	assert.Equal(t, "try", product.CurrencyCode)

	require.NotNil(t, product.Brand)
	assert.Equal(t, "Marka", *product.Brand)
	require.NotNil(t, product.Description)
	assert.Equal(t, "Yumusak dokulu gunluk tisort.", *product.Description)

	assert.Equal(t, []string{"https://cdn/one.jpg", "https://cdn/two.jpg"}, product.Images)
	assert.Equal(t, map[string]string{"kumas": "pamuk"}, product.Properties)

	require.NotNil(t, product.Price)
	regular, ok := product.Price.Regular.Value()
	require.True(t, ok)
	assert.InDelta(t, 129.90, regular, 0.001)
	assert.True(t, product.Price.Featured.IsNull())

	require.NotNil(t, product.Available)
	assert.True(t, *product.Available)

	assert.Empty(t, product.Variations)
	assert.NotNil(t, product.Variations)
	assert.NotNil(t, product.RecentReviews)
}

func TestExtractVariableProduct(t *testing.T) {
	pg := newColorSizePage(t)

	product, err := newTestExtractor().Extract(context.Background(), pg, "https://www.trendyol.com/p/456")
	require.NoError(t, err)

	assert.Equal(t, TypeVariable, product.Type)
	// Price and availability are per-variant on variable products.
	assert.Nil(t, product.Price)
	assert.Nil(t, product.Available)
	require.Len(t, product.Variations, 2)
	assert.Equal(t, "Siyah", product.Variations[0].Attributes["renk"])
	assert.Equal(t, "Beyaz", product.Variations[1].Attributes["renk"])
}

func TestExtractMissingFieldsStayNull(t *testing.T) {
	pg, err := pagequery.NewSnapshotPage(`<div class="container-right-content"></div>`)
	require.NoError(t, err)

	product, err := newTestExtractor().Extract(context.Background(), pg, "https://www.trendyol.com/p/789")
	require.NoError(t, err)

	assert.Nil(t, product.Title)
	assert.Nil(t, product.Brand)
	assert.Nil(t, product.Description)
	assert.Empty(t, product.Images)
	assert.Empty(t, product.Properties)

	// No variant markup at all still classifies cleanly.
	assert.Equal(t, TypeSimple, product.Type)
	require.NotNil(t, product.Price)
	assert.True(t, product.Price.Regular.IsNull())
	require.NotNil(t, product.Available)
	assert.True(t, *product.Available)
}

func TestExtractFastSkipsDescriptiveFields(t *testing.T) {
	pg := newColorSizePage(t)

	product, err := newTestExtractor().ExtractFast(context.Background(), pg, "https://www.trendyol.com/p/456", []string{"Beyaz"})
	require.NoError(t, err)

	assert.Equal(t, TypeVariable, product.Type)
	assert.Nil(t, product.Title)
	assert.Nil(t, product.Brand)
	assert.Empty(t, product.Images)

	require.Len(t, product.Variations, 1)
	assert.Equal(t, "Beyaz", product.Variations[0].Attributes["renk"])
	assert.Empty(t, product.Variations[0].Images)
}

func TestExtractFailsOnNavigationError(t *testing.T) {
	pg, err := pagequery.NewSnapshotPage(`<div></div>`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newTestExtractor().Extract(ctx, pg, "https://www.trendyol.com/p/1")
	assert.Error(t, err)
}
