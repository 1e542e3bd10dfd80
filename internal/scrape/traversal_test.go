package scrape

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Two colors, each with its own dependent size availability. Matches the
// shape of a typical apparel page.
const colorSizeHTML = `
<div class="container-right-content">
	<div class="slicing-attributes">
		<span class="slc-title">Renk</span>
		<a title="Siyah" class="selected"><span>Siyah</span></a>
		<a title="Beyaz"><span>Beyaz</span></a>
	</div>
	<div class="size-variant-wrapper">
		<div class="size-variant-title--bold">Beden:</div>
		<div class="sp-itm selected">S</div>
		<div class="sp-itm">M</div>
		<div class="sp-itm">L</div>
	</div>
	<div class="product-price-container">129,90 TL</div>
	<div class="product-button-container"><button class="add-to-basket">Sepete Ekle</button></div>
	<div class="gallery-container"><div class="product-slide"><img src="https://cdn/mnresize/128/192/img-black.jpg"></div></div>
</div>`

const whiteStateHTML = `
<div class="container-right-content">
	<div class="slicing-attributes">
		<span class="slc-title">Renk</span>
		<a title="Siyah"><span>Siyah</span></a>
		<a title="Beyaz" class="selected"><span>Beyaz</span></a>
	</div>
	<div class="size-variant-wrapper">
		<div class="size-variant-title--bold">Beden:</div>
		<div class="sp-itm selected">M</div>
		<div class="sp-itm">L</div>
	</div>
	<div class="featured-price-box">
		<div class="prc-org">149,90 TL</div>
		<div class="prc-dsc">99,90 TL</div>
	</div>
	<div class="product-button-container"><button class="sold-out">Tukendi</button></div>
	<div class="gallery-container"><div class="product-slide"><img src="https://cdn/mnresize/128/192/img-white.jpg"></div></div>
</div>`

func newColorSizePage(t *testing.T) *pagequery.SnapshotPage {
	t.Helper()
	pg, err := pagequery.NewSnapshotPage(colorSizeHTML)
	require.NoError(t, err)
	require.NoError(t, pg.AddState("Beyaz", whiteStateHTML))
	return pg
}

func TestExhaustiveEmitsOneRecordPerTopLevelOption(t *testing.T) {
	pg := newColorSizePage(t)
	traverser := NewTraverser(NoSettle{}, testLogger())

	variants, err := traverser.Exhaustive(context.Background(), pg)
	require.NoError(t, err)

	// One record per color; the dependent size group contributes its
	// currently selected label, not a combinatorial expansion.
	require.Len(t, variants, 2)

	assert.Equal(t, map[string]string{"renk": "Siyah", "beden": "s"}, variants[0].Attributes)
	assert.True(t, variants[0].Available)
	assert.Equal(t, []string{"https://cdn/img-black.jpg"}, variants[0].Images)
	assert.True(t, variants[0].Price.Featured.IsNull())
	regular, ok := variants[0].Price.Regular.Value()
	require.True(t, ok)
	assert.InDelta(t, 129.90, regular, 0.001)

	assert.Equal(t, map[string]string{"renk": "Beyaz", "beden": "m"}, variants[1].Attributes)
	assert.False(t, variants[1].Available)
	assert.Equal(t, []string{"https://cdn/img-white.jpg"}, variants[1].Images)
	featured, ok := variants[1].Price.Featured.Value()
	require.True(t, ok)
	assert.InDelta(t, 99.90, featured, 0.001)
}

func TestExhaustiveIsDeterministic(t *testing.T) {
	first, err := NewTraverser(NoSettle{}, testLogger()).Exhaustive(context.Background(), newColorSizePage(t))
	require.NoError(t, err)
	second, err := NewTraverser(NoSettle{}, testLogger()).Exhaustive(context.Background(), newColorSizePage(t))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Attributes, second[i].Attributes)
	}
}

func TestExhaustiveSkipsClickOnSelectedOption(t *testing.T) {
	pg := newColorSizePage(t)
	settle := &countingSettle{}
	traverser := NewTraverser(settle, testLogger())

	_, err := traverser.Exhaustive(context.Background(), pg)
	require.NoError(t, err)

	// Siyah starts selected, so only Beyaz costs a settle cycle.
	assert.Equal(t, 1, settle.calls)
}

func TestTargetedVisitsOnlyMatchingLabels(t *testing.T) {
	pg := newColorSizePage(t)
	traverser := NewTraverser(NoSettle{}, testLogger())

	variants, err := traverser.Targeted(context.Background(), pg, []string{"Beyaz"})
	require.NoError(t, err)

	require.Len(t, variants, 1)
	assert.Equal(t, "Beyaz", variants[0].Attributes["renk"])
	// Fast mode never re-extracts images.
	assert.Empty(t, variants[0].Images)
}

func TestTargetedMatchesVisibleTextWhenTitleDiffers(t *testing.T) {
	pg, err := pagequery.NewSnapshotPage(`
<div class="container-right-content">
	<div class="slicing-attributes">
		<span class="slc-title">Renk</span>
		<a title="Siyah - 2'li Paket" class="selected"><span>Siyah</span></a>
	</div>
</div>`)
	require.NoError(t, err)

	variants, err := NewTraverser(NoSettle{}, testLogger()).Targeted(context.Background(), pg, []string{"Siyah"})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "Siyah - 2'li Paket", variants[0].Attributes["renk"])
}

func TestTargetedWithNoMatchesEmitsNothing(t *testing.T) {
	variants, err := NewTraverser(NoSettle{}, testLogger()).Targeted(context.Background(), newColorSizePage(t), []string{"Kirmizi"})
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestWalkWithoutGroupsEmitsSingleDefaultRecord(t *testing.T) {
	pg, err := pagequery.NewSnapshotPage(`
<div class="container-right-content">
	<div class="size-variant-wrapper">
		<div class="size-variant-title--bold">Numara:</div>
		<div class="sp-itm selected">42</div>
	</div>
	<div class="product-price-container">349,90 TL</div>
</div>`)
	require.NoError(t, err)

	variants, err := NewTraverser(NoSettle{}, testLogger()).Exhaustive(context.Background(), pg)
	require.NoError(t, err)

	require.Len(t, variants, 1)
	assert.Equal(t, map[string]string{"numara": "42"}, variants[0].Attributes)
}

func TestActivationFailureSkipsOptionAndContinues(t *testing.T) {
	pg := &stubPage{groups: []pagequery.Group{{
		Title: "renk",
		Options: []pagequery.Option{
			&stubOption{label: "Siyah", activateErr: errors.New("detached node")},
			&stubOption{label: "Beyaz"},
		},
	}}}

	variants, err := NewTraverser(NoSettle{}, testLogger()).Exhaustive(context.Background(), pg)
	require.NoError(t, err)

	require.Len(t, variants, 1)
	assert.Equal(t, "Beyaz", variants[0].Attributes["renk"])
}

func TestTraversalStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	variants, err := NewTraverser(NoSettle{}, testLogger()).Exhaustive(ctx, newColorSizePage(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, variants)
}

type countingSettle struct {
	calls int
}

func (c *countingSettle) Settle(ctx context.Context) error {
	c.calls++
	return ctx.Err()
}

// stubPage returns canned groups; everything else reads as absent.
type stubPage struct {
	groups []pagequery.Group
}

func (p *stubPage) Goto(ctx context.Context, url string) error { return ctx.Err() }
func (p *stubPage) CurrentURL() string                         { return "" }
func (p *stubPage) ReadText(q pagequery.Query) (string, error) { return "", nil }
func (p *stubPage) ReadTexts(q pagequery.Query) ([]string, error) {
	return nil, nil
}
func (p *stubPage) ReadAttr(q pagequery.Query, attr string) ([]string, error) {
	return nil, nil
}
func (p *stubPage) ReadPairs(q pagequery.Query) (map[string]string, error) {
	return map[string]string{}, nil
}
func (p *stubPage) Exists(q pagequery.Query) (bool, error)  { return false, nil }
func (p *stubPage) QueryGroups() ([]pagequery.Group, error) { return p.groups, nil }
func (p *stubPage) SecondaryGroups() ([]pagequery.SecondaryGroup, error) {
	return nil, nil
}
func (p *stubPage) ScrollToEnd(q pagequery.Query) error { return nil }
func (p *stubPage) Remove(qs ...pagequery.Query) error  { return nil }
func (p *stubPage) Close() error                        { return nil }

type stubOption struct {
	label       string
	selected    bool
	activateErr error
}

func (o *stubOption) Label() (string, error)  { return o.label, nil }
func (o *stubOption) Text() (string, error)   { return o.label, nil }
func (o *stubOption) Selected() (bool, error) { return o.selected, nil }
func (o *stubOption) Activate() error         { return o.activateErr }

var _ pagequery.Page = (*stubPage)(nil)
