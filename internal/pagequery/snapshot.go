package pagequery

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SnapshotPage serves captured page HTML without a browser. Option activation
// swaps in a registered per-option document, and scrolling advances through
// registered listing states, which makes page state transitions fully
// deterministic. Used by tests and the dry-run extraction path.
type SnapshotPage struct {
	current *goquery.Document
	states  map[string]*goquery.Document
	scroll  []*goquery.Document
	url     string
}

// NewSnapshotPage parses the initial page state.
func NewSnapshotPage(html string) (*SnapshotPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return &SnapshotPage{
		current: doc,
		states:  make(map[string]*goquery.Document),
	}, nil
}

// AddState registers the page state reached by activating the option with the
// given label.
func (p *SnapshotPage) AddState(label, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse state %q: %w", label, err)
	}
	p.states[label] = doc
	return nil
}

// AddScrollState appends a listing state revealed by the next scroll.
func (p *SnapshotPage) AddScrollState(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse scroll state: %w", err)
	}
	p.scroll = append(p.scroll, doc)
	return nil
}

func (p *SnapshotPage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.url = url
	return nil
}

func (p *SnapshotPage) CurrentURL() string {
	return p.url
}

func (p *SnapshotPage) ReadText(q Query) (string, error) {
	sel := p.current.Find(string(q)).First()
	if sel.Length() == 0 {
		return "", nil
	}
	return strings.TrimSpace(sel.Text()), nil
}

func (p *SnapshotPage) ReadTexts(q Query) ([]string, error) {
	var texts []string
	p.current.Find(string(q)).Each(func(_ int, sel *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(sel.Text()))
	})
	return texts, nil
}

func (p *SnapshotPage) ReadAttr(q Query, attr string) ([]string, error) {
	var values []string
	p.current.Find(string(q)).Each(func(_ int, sel *goquery.Selection) {
		if value, ok := sel.Attr(attr); ok && value != "" {
			values = append(values, value)
		}
	})
	return values, nil
}

func (p *SnapshotPage) ReadPairs(q Query) (map[string]string, error) {
	pairs := make(map[string]string)
	p.current.Find(string(q)).Each(func(_ int, item *goquery.Selection) {
		spans := item.Find("span")
		if spans.Length() < 2 {
			return
		}
		key := strings.ToLower(strings.TrimSpace(spans.Eq(0).Text()))
		value := strings.ToLower(strings.TrimSpace(spans.Eq(1).Text()))
		if key != "" {
			pairs[key] = value
		}
	})
	return pairs, nil
}

func (p *SnapshotPage) Exists(q Query) (bool, error) {
	return p.current.Find(string(q)).Length() > 0, nil
}

func (p *SnapshotPage) QueryGroups() ([]Group, error) {
	var groups []Group
	p.current.Find(string(QuerySlicingGroups)).Each(func(_ int, wrapper *goquery.Selection) {
		if strings.TrimSpace(wrapper.Text()) == "" {
			return
		}

		title := wrapper.Find(string(QueryGroupTitle)).First().Text()
		group := Group{Title: title}
		wrapper.Find(string(QueryGroupOption)).Each(func(_ int, link *goquery.Selection) {
			group.Options = append(group.Options, &snapshotOption{page: p, sel: link})
		})

		groups = append(groups, group)
	})
	return groups, nil
}

func (p *SnapshotPage) SecondaryGroups() ([]SecondaryGroup, error) {
	var groups []SecondaryGroup
	p.current.Find(string(QuerySecondaryGroups)).Each(func(_ int, wrapper *goquery.Selection) {
		if strings.TrimSpace(wrapper.Text()) == "" {
			return
		}

		group := SecondaryGroup{
			Title: wrapper.Find(string(QuerySecondaryTitle)).First().Text(),
		}
		wrapper.Find(string(QuerySecondaryOption)).Each(func(_ int, item *goquery.Selection) {
			group.Options = append(group.Options, strings.ToLower(strings.TrimSpace(item.Text())))
		})

		selected := wrapper.Find(string(QuerySecondarySelected)).First()
		if selected.Length() > 0 {
			group.Selected = strings.ToLower(strings.TrimSpace(selected.Text()))
		}
		if group.Selected == "" && len(group.Options) > 0 {
			group.Selected = group.Options[0]
		}

		groups = append(groups, group)
	})
	return groups, nil
}

func (p *SnapshotPage) ScrollToEnd(q Query) error {
	if len(p.scroll) > 0 {
		p.current = p.scroll[0]
		p.scroll = p.scroll[1:]
	}
	return nil
}

func (p *SnapshotPage) Remove(qs ...Query) error {
	for _, q := range qs {
		p.current.Find(string(q)).Remove()
	}
	return nil
}

func (p *SnapshotPage) Close() error {
	return nil
}

func (p *SnapshotPage) activate(label string) {
	if doc, ok := p.states[label]; ok {
		p.current = doc
	}
}

type snapshotOption struct {
	page *SnapshotPage
	sel  *goquery.Selection
}

func (o *snapshotOption) Label() (string, error) {
	return strings.TrimSpace(o.sel.AttrOr("title", "")), nil
}

func (o *snapshotOption) Text() (string, error) {
	return strings.TrimSpace(o.sel.Text()), nil
}

func (o *snapshotOption) Selected() (bool, error) {
	return o.sel.HasClass("selected"), nil
}

func (o *snapshotOption) Activate() error {
	label, _ := o.Label()
	if label == "" {
		label, _ = o.Text()
	}
	o.page.activate(label)
	return nil
}
