package utils

import (
	"sync"
	"time"
)

// SlidingWindow counts hits within a trailing window. A hit exactly one
// window old still counts.
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	hits   []time.Time
}

func NewSlidingWindow(window time.Duration) *SlidingWindow {
	return &SlidingWindow{window: window}
}

func (w *SlidingWindow) Add(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	w.hits = append(w.hits, now)
	return len(w.hits)
}

// AddAndResetAbove records a hit and clears the window when the count
// exceeds limit. It reports the count seen and whether the window was cleared.
func (w *SlidingWindow) AddAndResetAbove(now time.Time, limit int) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	w.hits = append(w.hits, now)
	count := len(w.hits)
	if count <= limit {
		return count, false
	}
	w.hits = nil
	return count, true
}

func (w *SlidingWindow) Count(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now)
	return len(w.hits)
}

func (w *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	idx := 0
	for _, hit := range w.hits {
		if !hit.Before(cutoff) {
			break
		}
		idx++
	}
	w.hits = w.hits[idx:]
}
