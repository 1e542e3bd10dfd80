package scrape

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evokelektrique/trendyol-scrapper/internal/pagequery"
)

// Traverser drives a product page through attribute-option combinations and
// captures one Variant per combination reached. Traversal order is
// group-major, option-minor, so output order is deterministic for a fixed
// page state.
type Traverser struct {
	settle SettleStrategy
	logger *slog.Logger
}

// NewTraverser builds a traverser with the given settle strategy.
func NewTraverser(settle SettleStrategy, logger *slog.Logger) *Traverser {
	if settle == nil {
		settle = NewFixedDelay(DefaultSettleDelay)
	}
	return &Traverser{
		settle: settle,
		logger: logger.With("component", "traversal"),
	}
}

// Exhaustive visits every option of every slicing group in discovery order.
func (t *Traverser) Exhaustive(ctx context.Context, pg pagequery.Page) ([]Variant, error) {
	return t.walk(ctx, pg, nil, true)
}

// Targeted visits only options whose label exactly matches one of targets,
// comparing against both the accessible title and the visible text.
// Non-matching options are never activated, and image re-extraction is
// skipped: this mode re-checks a known subset of combinations cheaply.
func (t *Traverser) Targeted(ctx context.Context, pg pagequery.Page, targets []string) ([]Variant, error) {
	targetSet := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		targetSet[target] = struct{}{}
	}
	return t.walk(ctx, pg, targetSet, false)
}

func (t *Traverser) walk(ctx context.Context, pg pagequery.Page, targets map[string]struct{}, withImages bool) ([]Variant, error) {
	discovery, err := Discover(pg)
	if err != nil {
		return nil, fmt.Errorf("traversal discovery failed: %w", err)
	}

	// No top-level slicing attributes: the default page state is the only
	// combination there is. Read the dependent groups as they stand and emit
	// a single record for it.
	if len(discovery.Groups) == 0 {
		variant := t.capture(pg, map[string]string{}, withImages)
		return []Variant{variant}, nil
	}

	variants := make([]Variant, 0)
	for _, group := range discovery.Groups {
		for _, option := range group.Options {
			if err := ctx.Err(); err != nil {
				return variants, err
			}

			label := t.optionLabel(option)
			if targets != nil && !matchesTarget(targets, option) {
				continue
			}

			selected, err := option.Selected()
			if err != nil {
				t.logger.Warn("failed to read option state, skipping",
					"group", group.Title, "label", label, "error", err)
				continue
			}

			// Selecting an already-active option triggers a no-op navigation
			// that wastes a settle cycle; skip the click.
			if !selected {
				if err := option.Activate(); err != nil {
					t.logger.Warn("option activation failed, skipping",
						"group", group.Title, "label", label, "error", err)
					continue
				}
				if err := t.settle.Settle(ctx); err != nil {
					return variants, err
				}
			}

			// Some pages rewrite the option label after selection; re-read it
			// post-activation.
			if fresh := t.optionLabel(option); fresh != "" {
				label = fresh
			}

			attrs := map[string]string{group.Title: label}
			variants = append(variants, t.capture(pg, attrs, withImages))
		}
	}

	return variants, nil
}

// capture extracts one Variant from the now-settled page state, merging the
// currently selected label of every visible dependent group into attrs.
func (t *Traverser) capture(pg pagequery.Page, attrs map[string]string, withImages bool) Variant {
	secondaries, err := pg.SecondaryGroups()
	if err != nil {
		t.logger.Warn("failed to read dependent groups", "error", err)
	}
	for _, secondary := range secondaries {
		title := NormalizeGroupTitle(secondary.Title)
		if title == "" || secondary.Selected == "" {
			continue
		}
		if _, exists := attrs[title]; exists {
			continue
		}
		attrs[title] = secondary.Selected
	}

	variant := Variant{
		Attributes: attrs,
		Images:     []string{},
		Price:      readPrice(pg),
		Available:  readAvailability(pg),
	}
	if withImages {
		variant.Images = readImages(pg)
	}

	return variant
}

// optionLabel prefers the accessible title and falls back to visible text.
func (t *Traverser) optionLabel(option pagequery.Option) string {
	if label, err := option.Label(); err == nil && label != "" {
		return label
	}
	if text, err := option.Text(); err == nil {
		return text
	}
	return ""
}

func matchesTarget(targets map[string]struct{}, option pagequery.Option) bool {
	if label, err := option.Label(); err == nil {
		if _, ok := targets[label]; ok {
			return true
		}
	}
	if text, err := option.Text(); err == nil {
		if _, ok := targets[text]; ok {
			return true
		}
	}
	return false
}
