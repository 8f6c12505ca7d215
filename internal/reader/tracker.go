package reader

import (
	"context"
	"sync"
	"time"

	"github.com/FocuswithJustin/JuniperReader/internal/logging"
)

// NearBottomThreshold is how close, in pixels, the viewport must come to
// the end of the chapter for it to count as read.
const NearBottomThreshold = 50

// NearBottom reports whether a scroll position is within
// NearBottomThreshold of the bottom of the content.
func NearBottom(scrollTop, clientHeight, scrollHeight float64) bool {
	return scrollTop+clientHeight >= scrollHeight-NearBottomThreshold
}

// Reading is one assigned passage of a reading plan.
type Reading struct {
	PlanID  string `json:"planId"`
	Day     int    `json:"day"`
	Version string `json:"version"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// ReadingPlan tracks progress through a plan. Storage is up to the
// implementation.
type ReadingPlan interface {
	// Current returns the reading being displayed, if any.
	Current() (Reading, bool)
	IsComplete(r Reading) bool
	MarkComplete(ctx context.Context, r Reading) error
}

// ReadingTracker marks the current reading complete once the reader
// scrolls to the end of it. Scroll checks closer together than the
// debounce interval are ignored.
type ReadingTracker struct {
	plan     ReadingPlan
	debounce time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewReadingTracker returns a tracker for plan.
func NewReadingTracker(plan ReadingPlan, debounce time.Duration) *ReadingTracker {
	return &ReadingTracker{plan: plan, debounce: debounce, now: time.Now}
}

// Check evaluates one scroll position and reports whether it completed
// the current reading. Completing an already complete reading is a no-op.
func (t *ReadingTracker) Check(ctx context.Context, scrollTop, clientHeight, scrollHeight float64) (bool, error) {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.debounce {
		t.mu.Unlock()
		return false, nil
	}
	t.last = now
	t.mu.Unlock()

	if !NearBottom(scrollTop, clientHeight, scrollHeight) {
		return false, nil
	}
	reading, ok := t.plan.Current()
	if !ok || t.plan.IsComplete(reading) {
		return false, nil
	}
	if err := t.plan.MarkComplete(ctx, reading); err != nil {
		return false, err
	}
	logging.InfoContext(ctx, "reading_completed",
		"plan", reading.PlanID, "day", reading.Day, "book", reading.Book, "chapter", reading.Chapter)
	return true, nil
}
