package guard

import (
	"testing"
	"time"
)

func TestMarkDirty(t *testing.T) {
	g := New()
	if g.Dirty() {
		t.Fatal("new guard should be clean")
	}
	g.MarkDirty()
	if !g.Dirty() {
		t.Error("expected dirty after MarkDirty")
	}
	if !g.ConfirmUnload() {
		t.Error("expected unload prompt while dirty")
	}
}

func TestClickClearsAfterDelay(t *testing.T) {
	g := New()
	g.MarkDirty()
	g.ClickObserved()

	if !g.Dirty() {
		t.Error("flag cleared immediately, should wait for the delay")
	}

	waitFor(t, func() bool { return !g.Dirty() })
	if g.ConfirmUnload() {
		t.Error("unload should not prompt after flag cleared")
	}
}

func TestInFlightHoldsFlag(t *testing.T) {
	g := New()
	g.MarkDirty()
	g.RequestStarted()
	g.ClickObserved()

	time.Sleep(ClearDelay + 200*time.Millisecond)
	if !g.Dirty() {
		t.Fatal("flag cleared while a request was still pending")
	}

	g.RequestFinished()
	// The clear timer already fired; a later click is needed to retry.
	g.ClickObserved()
	waitFor(t, func() bool { return !g.Dirty() })
}

func TestLaterClickRearmsTimer(t *testing.T) {
	g := New()
	g.MarkDirty()
	g.ClickObserved()
	time.Sleep(ClearDelay / 2)
	g.ClickObserved()
	time.Sleep(ClearDelay/2 + 100*time.Millisecond)

	// First click's deadline has passed but the second click superseded it.
	waitFor(t, func() bool { return !g.Dirty() })
}

func TestRequestFinishedNeverGoesNegative(t *testing.T) {
	g := New()
	g.RequestFinished()
	if g.InFlight() != 0 {
		t.Errorf("in-flight count = %d, want 0", g.InFlight())
	}
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(ClearDelay + 2*time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
