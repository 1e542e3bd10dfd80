package pagequery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightPage runs queries against a live browser page.
type PlaywrightPage struct {
	page   playwright.Page
	logger *slog.Logger
}

// NewPlaywrightPage wraps a playwright page in the Page interface.
func NewPlaywrightPage(page playwright.Page, logger *slog.Logger) *PlaywrightPage {
	return &PlaywrightPage{
		page:   page,
		logger: logger.With("component", "pagequery"),
	}
}

func (p *PlaywrightPage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	return nil
}

func (p *PlaywrightPage) CurrentURL() string {
	return p.page.URL()
}

func (p *PlaywrightPage) ReadText(q Query) (string, error) {
	el, err := p.page.QuerySelector(string(q))
	if err != nil {
		return "", fmt.Errorf("query %q failed: %w", q, err)
	}
	if el == nil {
		return "", nil
	}

	text, err := el.TextContent()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %q: %w", q, err)
	}

	return strings.TrimSpace(text), nil
}

func (p *PlaywrightPage) ReadTexts(q Query) ([]string, error) {
	els, err := p.page.QuerySelectorAll(string(q))
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", q, err)
	}

	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.TextContent()
		if err != nil {
			continue
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	return texts, nil
}

func (p *PlaywrightPage) ReadAttr(q Query, attr string) ([]string, error) {
	els, err := p.page.QuerySelectorAll(string(q))
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", q, err)
	}

	values := make([]string, 0, len(els))
	for _, el := range els {
		value, err := el.GetAttribute(attr)
		if err != nil || value == "" {
			continue
		}
		values = append(values, value)
	}

	return values, nil
}

func (p *PlaywrightPage) ReadPairs(q Query) (map[string]string, error) {
	items, err := p.page.QuerySelectorAll(string(q))
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", q, err)
	}

	pairs := make(map[string]string, len(items))
	for _, item := range items {
		spans, err := item.QuerySelectorAll("span")
		if err != nil || len(spans) < 2 {
			continue
		}

		key, err := spans[0].TextContent()
		if err != nil {
			continue
		}
		value, err := spans[1].TextContent()
		if err != nil {
			continue
		}

		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		pairs[key] = value
	}

	return pairs, nil
}

func (p *PlaywrightPage) Exists(q Query) (bool, error) {
	el, err := p.page.QuerySelector(string(q))
	if err != nil {
		return false, fmt.Errorf("query %q failed: %w", q, err)
	}
	return el != nil, nil
}

func (p *PlaywrightPage) QueryGroups() ([]Group, error) {
	wrappers, err := p.page.QuerySelectorAll(string(QuerySlicingGroups))
	if err != nil {
		return nil, fmt.Errorf("failed to query slicing groups: %w", err)
	}

	groups := make([]Group, 0, len(wrappers))
	for _, wrapper := range wrappers {
		content, err := wrapper.TextContent()
		if err != nil {
			continue
		}
		// Hidden or placeholder markup renders no text; skip it.
		if strings.TrimSpace(content) == "" {
			continue
		}

		titleEl, err := wrapper.QuerySelector(string(QueryGroupTitle))
		if err != nil || titleEl == nil {
			continue
		}
		title, err := titleEl.TextContent()
		if err != nil {
			continue
		}

		links, err := wrapper.QuerySelectorAll(string(QueryGroupOption))
		if err != nil {
			continue
		}

		options := make([]Option, 0, len(links))
		for _, link := range links {
			options = append(options, &playwrightOption{handle: link})
		}

		groups = append(groups, Group{Title: title, Options: options})
	}

	return groups, nil
}

func (p *PlaywrightPage) SecondaryGroups() ([]SecondaryGroup, error) {
	wrappers, err := p.page.QuerySelectorAll(string(QuerySecondaryGroups))
	if err != nil {
		return nil, fmt.Errorf("failed to query secondary groups: %w", err)
	}

	groups := make([]SecondaryGroup, 0, len(wrappers))
	for _, wrapper := range wrappers {
		content, err := wrapper.TextContent()
		if err != nil || strings.TrimSpace(content) == "" {
			continue
		}

		titleEl, err := wrapper.QuerySelector(string(QuerySecondaryTitle))
		if err != nil || titleEl == nil {
			continue
		}
		title, err := titleEl.TextContent()
		if err != nil {
			continue
		}

		group := SecondaryGroup{Title: title}

		items, err := wrapper.QuerySelectorAll(string(QuerySecondaryOption))
		if err != nil {
			continue
		}
		for _, item := range items {
			text, err := item.TextContent()
			if err != nil {
				continue
			}
			group.Options = append(group.Options, strings.ToLower(strings.TrimSpace(text)))
		}

		if selectedEl, err := wrapper.QuerySelector(string(QuerySecondarySelected)); err == nil && selectedEl != nil {
			if text, err := selectedEl.TextContent(); err == nil {
				group.Selected = strings.ToLower(strings.TrimSpace(text))
			}
		}
		if group.Selected == "" && len(group.Options) > 0 {
			group.Selected = group.Options[0]
		}

		groups = append(groups, group)
	}

	return groups, nil
}

func (p *PlaywrightPage) ScrollToEnd(q Query) error {
	script := fmt.Sprintf(
		`document.querySelector(%q) && document.querySelector(%q).scrollIntoView({block:'end'})`,
		string(q), string(q),
	)
	if _, err := p.page.Evaluate(script); err != nil {
		return fmt.Errorf("failed to scroll %q: %w", q, err)
	}
	return nil
}

func (p *PlaywrightPage) Remove(qs ...Query) error {
	for _, q := range qs {
		script := fmt.Sprintf(
			`document.querySelectorAll(%q).forEach((el) => el.remove())`,
			string(q),
		)
		if _, err := p.page.Evaluate(script); err != nil {
			return fmt.Errorf("failed to remove %q: %w", q, err)
		}
	}

	// Variation sliders clip their options behind overflow containers; lift
	// the clipping so option handles are clickable.
	_, err := p.page.Evaluate(`document.querySelectorAll('.attributeSlider *').forEach((el) => {
		el.style.overflow = 'visible';
		el.style.zIndex = 9999999;
		el.style.position = 'relative';
	})`)
	if err != nil {
		return fmt.Errorf("failed to unclip variation sliders: %w", err)
	}

	return nil
}

func (p *PlaywrightPage) Close() error {
	if err := p.page.Close(); err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	return nil
}

type playwrightOption struct {
	handle playwright.ElementHandle
}

func (o *playwrightOption) Label() (string, error) {
	label, err := o.handle.GetAttribute("title")
	if err != nil {
		return "", fmt.Errorf("failed to read option title: %w", err)
	}
	return strings.TrimSpace(label), nil
}

func (o *playwrightOption) Text() (string, error) {
	text, err := o.handle.TextContent()
	if err != nil {
		return "", fmt.Errorf("failed to read option text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (o *playwrightOption) Selected() (bool, error) {
	class, err := o.handle.GetAttribute("class")
	if err != nil {
		return false, fmt.Errorf("failed to read option class: %w", err)
	}
	for _, name := range strings.Fields(class) {
		if name == "selected" {
			return true, nil
		}
	}
	return false, nil
}

func (o *playwrightOption) Activate() error {
	if err := o.handle.Click(); err != nil {
		return fmt.Errorf("failed to click option: %w", err)
	}
	return nil
}
