package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSlidingWindowAdd(t *testing.T) {
	window := NewSlidingWindow(2 * time.Second)
	now := time.Now()
	if count := window.Add(now); count != 1 {
		t.Fatalf("expected 1, got %d", count)
	}
	window.Add(now.Add(500 * time.Millisecond))
	if count := window.Count(now.Add(1 * time.Second)); count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	if count := window.Count(now.Add(3 * time.Second)); count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
}

func TestSlidingWindowBoundaryIsInclusive(t *testing.T) {
	window := NewSlidingWindow(10 * time.Second)
	now := time.Now()
	window.Add(now)
	if count := window.Count(now.Add(10 * time.Second)); count != 1 {
		t.Fatalf("expected hit at exact window age to count, got %d", count)
	}
	if count := window.Count(now.Add(10*time.Second + time.Millisecond)); count != 0 {
		t.Fatalf("expected 0 after window, got %d", count)
	}
}

func TestSlidingWindowAddAfterReset(t *testing.T) {
	window := NewSlidingWindow(10 * time.Second)
	now := time.Now()
	window.Add(now)
	window.AddAndResetAbove(now, 1)
	if count := window.Add(now); count != 1 {
		t.Fatalf("expected 1 after reset, got %d", count)
	}
}

func TestSlidingWindowAddAndResetAbove(t *testing.T) {
	window := NewSlidingWindow(10 * time.Second)
	now := time.Now()
	for i := 1; i <= 3; i++ {
		if count, reset := window.AddAndResetAbove(now, 3); count != i || reset {
			t.Fatalf("expected count %d without reset, got %d %v", i, count, reset)
		}
	}
	if count, reset := window.AddAndResetAbove(now, 3); count != 4 || !reset {
		t.Fatalf("expected reset at count 4, got %d %v", count, reset)
	}
	if count := window.Count(now); count != 0 {
		t.Fatalf("expected empty window after reset, got %d", count)
	}
}

func TestSlidingWindowConcurrentResetFiresOncePerOverflow(t *testing.T) {
	window := NewSlidingWindow(time.Minute)
	now := time.Now()
	const hits = 100
	var (
		wg     sync.WaitGroup
		resets atomic.Int32
	)
	for i := 0; i < hits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, reset := window.AddAndResetAbove(now, 4); reset {
				resets.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := resets.Load(); got != hits/5 {
		t.Fatalf("expected %d resets, got %d", hits/5, got)
	}
}
