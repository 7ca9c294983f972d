// Package debounce provides per-field coalescing of rapid edits.
//
// Each field key owns at most one armed timer. Scheduling a new action for a
// key cancels the previous one, so a burst of keystrokes settles into a
// single dispatch carrying the final value (last-write-wins at the
// scheduling layer).
package debounce

import (
	"sync"
	"time"

	"github.com/kshaw/monthgrid/internal/field"
)

// DefaultDelay is the quiet period required before a text edit is dispatched.
const DefaultDelay = 500 * time.Millisecond

// Scheduler coalesces rapid edits into a single action per field key.
type Scheduler struct {
	mu     sync.Mutex
	timers map[field.Key]*time.Timer
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[field.Key]*time.Timer),
	}
}

// Schedule arms a timer for the key, cancelling any previously scheduled
// action for the same key. When delay elapses without another Schedule call
// for the key, action runs exactly once.
func (s *Scheduler) Schedule(key field.Key, delay time.Duration, action func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		// A newer Schedule call for this key replaces the map entry; only
		// the timer that still owns the entry may fire its action.
		s.mu.Lock()
		current, ok := s.timers[key]
		if !ok || current != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		action()
	})
	s.timers[key] = timer
}

// Cancel clears a pending timer for the key without running its action.
// It is a no-op if nothing is scheduled.
func (s *Scheduler) Cancel(key field.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// CancelAll clears every pending timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
