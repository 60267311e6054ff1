package providers

import (
	"sync"
	"time"
)

// windowDuration is the length of the rate-limiting window.
const windowDuration = time.Minute

// rateWindow enforces a per-minute cap on real backend calls.
//
// The window has two states: open (under quota) and throttled (quota
// exhausted before the window elapsed). The reset is lazy: the first
// check at or after windowStart+60s zeroes the counter and restarts the
// window. There is no queuing; a throttled request fails immediately
// with a soft error.
type rateWindow struct {
	mu          sync.Mutex
	limit       int
	count       int
	windowStart time.Time
}

func newRateWindow(limit int) *rateWindow {
	return &rateWindow{
		limit:       limit,
		windowStart: time.Now(),
	}
}

// allow reports whether a call may proceed, consuming one slot if so.
// A throttled check consumes nothing.
func (w *rateWindow) allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if now.Sub(w.windowStart) >= windowDuration {
		w.count = 0
		w.windowStart = now
	}

	if w.count >= w.limit {
		return false
	}

	w.count++
	return true
}

// remaining returns the number of slots left in the current window.
func (w *rateWindow) remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if time.Since(w.windowStart) >= windowDuration {
		return w.limit
	}

	left := w.limit - w.count
	if left < 0 {
		left = 0
	}
	return left
}
