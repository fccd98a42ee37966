package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type windowEntry struct {
	count int
	start time.Time
}

// FixedWindow is the in-process limiter. State lives in a mutex-guarded map
// and is only evicted by Cleanup.
type FixedWindow struct {
	max    int
	window time.Duration
	clock  Clock

	mu      sync.Mutex
	entries map[string]windowEntry
}

func NewFixedWindow(max int, window time.Duration, clock Clock) (*FixedWindow, error) {
	if max <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	if clock == nil {
		clock = SystemClock
	}
	return &FixedWindow{
		max:     max,
		window:  window,
		clock:   clock,
		entries: make(map[string]windowEntry),
	}, nil
}

func (l *FixedWindow) Allow(_ context.Context, key string) (bool, time.Duration) {
	key = normalizeKey(key)
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.Sub(e.start) >= l.window {
		l.entries[key] = windowEntry{count: 1, start: now}
		return true, 0
	}
	if e.count >= l.max {
		return false, e.start.Add(l.window).Sub(now)
	}
	e.count++
	l.entries[key] = e
	return true, 0
}

// RetryAfter returns how long key must wait before its window resets, or 0
// when it has no open window.
func (l *FixedWindow) RetryAfter(key string) time.Duration {
	key = normalizeKey(key)
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return 0
	}
	if left := e.start.Add(l.window).Sub(now); left > 0 {
		return left
	}
	return 0
}

// Cleanup drops entries whose window closed at least one full window ago
// and returns how many were removed.
func (l *FixedWindow) Cleanup() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if now.Sub(e.start) >= 2*l.window {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RunCleanup evicts idle entries every interval until ctx is done.
func (l *FixedWindow) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "unknown"
	}
	return key
}
