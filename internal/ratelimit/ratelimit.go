// Package ratelimit bounds outbound browser-driven traffic per job kind.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates job executions. Wait blocks until an execution slot is
// available inside the rolling window or the context is done.
type Limiter interface {
	Wait(ctx context.Context) error
}

// SlidingWindow allows at most max executions per rolling window, tracked in
// process memory.
type SlidingWindow struct {
	max    int
	window time.Duration
	mu     sync.Mutex
	stamps []time.Time
}

// NewSlidingWindow builds an in-memory rolling-window limiter.
func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		max:    max,
		window: window,
	}
}

func (s *SlidingWindow) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		now := time.Now()
		s.prune(now)

		if len(s.stamps) < s.max {
			s.stamps = append(s.stamps, now)
			s.mu.Unlock()
			return nil
		}

		// Window is full; wait until the oldest stamp rolls out.
		wait := s.stamps[0].Add(s.window).Sub(now)
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	kept := s.stamps[:0]
	for _, stamp := range s.stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	s.stamps = kept
}

// Unlimited never blocks. Used for job kinds without a rate limit.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
