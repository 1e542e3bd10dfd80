package scrape

import (
	"context"
	"time"
)

// DefaultSettleDelay approximates how long the page's reactive re-render
// takes after a mutating action. Empirically 3-4 seconds on this storefront.
const DefaultSettleDelay = 3500 * time.Millisecond

// SettleStrategy waits out the page's asynchronous re-render after a
// UI-mutating action. The page type offers no reliable "render complete"
// signal, so the production strategy is a fixed delay; keeping it behind an
// interface lets a real completion signal replace it without touching
// traversal logic.
type SettleStrategy interface {
	Settle(ctx context.Context) error
}

// FixedDelay settles by sleeping a constant interval.
type FixedDelay struct {
	delay time.Duration
}

// NewFixedDelay returns a fixed-interval settle strategy. A non-positive
// delay falls back to the default.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	if delay <= 0 {
		delay = DefaultSettleDelay
	}
	return &FixedDelay{delay: delay}
}

func (f *FixedDelay) Settle(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return nil
	}
}

// NoSettle skips waiting entirely. Used by tests and snapshot-backed pages
// where state transitions are synchronous.
type NoSettle struct{}

func (NoSettle) Settle(ctx context.Context) error {
	return ctx.Err()
}
