package pagequery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotProductHTML = `
<html><body>
<div class="container-right-content">
	<h1 class="pr-new-br"><a href="/brand">Marka</a> <span>Tisort</span></h1>
	<div class="slicing-attributes">
		<span class="slc-title">Renk</span>
		<a title="Siyah" class="selected"><span>Siyah</span></a>
		<a title="Beyaz"><span>Beyaz</span></a>
	</div>
	<div class="size-variant-wrapper">
		<div class="size-variant-title--bold">Beden:</div>
		<div class="sp-itm selected">S</div>
		<div class="sp-itm">M</div>
		<div class="sp-itm so">L</div>
	</div>
	<div class="product-price-container">129,90 TL</div>
</div>
<div class="detail-attr-container">
	<div class="detail-attr-item"><span>Kumas</span><span>Pamuk</span></div>
	<div class="detail-attr-item"><span>Desen</span><span>Duz</span></div>
</div>
</body></html>`

func TestSnapshotPageQueryGroups(t *testing.T) {
	pg, err := NewSnapshotPage(snapshotProductHTML)
	require.NoError(t, err)

	groups, err := pg.QueryGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, "Renk", groups[0].Title)
	require.Len(t, groups[0].Options, 2)

	label, err := groups[0].Options[0].Label()
	require.NoError(t, err)
	assert.Equal(t, "Siyah", label)

	selected, err := groups[0].Options[0].Selected()
	require.NoError(t, err)
	assert.True(t, selected)

	selected, err = groups[0].Options[1].Selected()
	require.NoError(t, err)
	assert.False(t, selected)
}

func TestSnapshotPageSecondaryGroups(t *testing.T) {
	pg, err := NewSnapshotPage(snapshotProductHTML)
	require.NoError(t, err)

	groups, err := pg.SecondaryGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, "Beden:", groups[0].Title)
	assert.Equal(t, "s", groups[0].Selected)
	// Sold-out entries carry the .so marker and are excluded.
	assert.Equal(t, []string{"s", "m"}, groups[0].Options)
}

func TestSnapshotPageSecondarySelectedFallsBackToFirstOption(t *testing.T) {
	pg, err := NewSnapshotPage(`
<div class="container-right-content">
	<div class="size-variant-wrapper">
		<div class="size-variant-title--bold">Beden</div>
		<div class="sp-itm">36</div>
		<div class="sp-itm">38</div>
	</div>
</div>`)
	require.NoError(t, err)

	groups, err := pg.SecondaryGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "36", groups[0].Selected)
}

func TestSnapshotPageActivateSwapsState(t *testing.T) {
	pg, err := NewSnapshotPage(snapshotProductHTML)
	require.NoError(t, err)
	require.NoError(t, pg.AddState("Beyaz", `
<div class="container-right-content">
	<div class="product-price-container">99,90 TL</div>
</div>`))

	groups, err := pg.QueryGroups()
	require.NoError(t, err)
	require.NoError(t, groups[0].Options[1].Activate())

	text, err := pg.ReadText(QueryPlainPrice)
	require.NoError(t, err)
	assert.Equal(t, "99,90 TL", text)
}

func TestSnapshotPageReadPairs(t *testing.T) {
	pg, err := NewSnapshotPage(snapshotProductHTML)
	require.NoError(t, err)

	pairs, err := pg.ReadPairs(QueryPropertyItems)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kumas": "pamuk", "desen": "duz"}, pairs)
}

func TestSnapshotPageScrollAdvancesStates(t *testing.T) {
	pg, err := NewSnapshotPage(`<div class="prdct-cntnr-wrppr"><div class="p-card-wrppr"><a href="/p/1"></a></div></div>`)
	require.NoError(t, err)
	require.NoError(t, pg.AddScrollState(`<div class="prdct-cntnr-wrppr"><div class="p-card-wrppr"><a href="/p/2"></a></div></div>`))

	hrefs, err := pg.ReadAttr(QueryListingCards, "href")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/1"}, hrefs)

	require.NoError(t, pg.ScrollToEnd(QueryListingContainer))

	hrefs, err = pg.ReadAttr(QueryListingCards, "href")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/2"}, hrefs)

	// No further states registered; scrolling again is a no-op.
	require.NoError(t, pg.ScrollToEnd(QueryListingContainer))
	hrefs, err = pg.ReadAttr(QueryListingCards, "href")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/2"}, hrefs)
}

func TestSnapshotPageRemove(t *testing.T) {
	pg, err := NewSnapshotPage(`<div id="onetrust-consent-sdk">wall</div><div class="pr-new-br"><span>Kept</span></div>`)
	require.NoError(t, err)

	require.NoError(t, pg.Remove(RemovableOverlays...))

	exists, err := pg.Exists("#onetrust-consent-sdk")
	require.NoError(t, err)
	assert.False(t, exists)

	text, err := pg.ReadText(QueryBrandSpan)
	require.NoError(t, err)
	assert.Equal(t, "Kept", text)
}

func TestSnapshotPageGotoHonorsContext(t *testing.T) {
	pg, err := NewSnapshotPage(`<div></div>`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, pg.Goto(ctx, "https://www.trendyol.com/x"))
	require.NoError(t, pg.Goto(context.Background(), "https://www.trendyol.com/x"))
	assert.Equal(t, "https://www.trendyol.com/x", pg.CurrentURL())
}
