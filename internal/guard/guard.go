// Package guard tracks whether any edit is unflushed or in flight, so the
// page can warn before navigating away.
//
// The flag is write-only-true from edit handlers and is reset by a timer
// anchored to "any click anywhere", one second later. That anchor is a
// heuristic proxy for "the in-flight saves have likely completed": under a
// slow network a click can clear the flag before its own save is confirmed.
// The in-flight counter narrows that window — the flag is never cleared
// while a request is provably still pending — but does not close it for
// edits that are dirty without a request started yet.
package guard

import (
	"sync"
	"time"
)

// ClearDelay is how long after a click the dirty flag is reset.
const ClearDelay = time.Second

// Guard is the process-wide unsaved-changes flag.
//
// All mutation points are explicit: MarkDirty from edit handlers,
// RequestStarted/RequestFinished from the dispatch path, ClickObserved from
// the document-level click listener.
type Guard struct {
	mu       sync.Mutex
	dirty    bool
	inFlight int
	timer    *time.Timer
}

// New creates a clean guard.
func New() *Guard {
	return &Guard{}
}

// MarkDirty records that a tracked input changed.
func (g *Guard) MarkDirty() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty = true
}

// RequestStarted records that a save request went out.
func (g *Guard) RequestStarted() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight++
}

// RequestFinished records that a save request resolved, successfully or not.
func (g *Guard) RequestFinished() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight > 0 {
		g.inFlight--
	}
}

// ClickObserved arms the clear timer. A later click rearms it, so the flag
// clears one second after the last click, not the first.
func (g *Guard) ClickObserved() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(ClearDelay, g.tryClear)
}

// tryClear resets the flag unless a request is still pending.
func (g *Guard) tryClear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight > 0 {
		return
	}
	g.dirty = false
}

// Dirty reports whether any edit is unflushed or in flight.
func (g *Guard) Dirty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dirty
}

// InFlight returns the number of pending save requests.
func (g *Guard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// ConfirmUnload is consulted by the page-unload hook. When it returns true
// the host must request the browser-native confirmation prompt and clear the
// unload event's return-value property so a canceled-but-not-displayed
// dialog does not leave the event in an inconsistent state.
func (g *Guard) ConfirmUnload() bool {
	return g.Dirty()
}
