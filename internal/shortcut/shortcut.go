// Package shortcut translates keyboard chords into month navigation.
//
// This is a pure input-translation layer with no state and no knowledge of
// the sync engine; it only shares the event-listener substrate with it.
package shortcut

// Navigator is the month navigation control the dispatcher activates.
type Navigator interface {
	PrevMonth()
	NextMonth()
}

// Chord is a normalized keyboard event.
type Chord struct {
	// Ctrl is the Control modifier; Meta is the Command key on macOS.
	Ctrl bool
	Meta bool
	// Key is the event key name, e.g. "ArrowLeft".
	Key string
}

// Dispatcher maps chords onto a Navigator.
type Dispatcher struct {
	nav Navigator
}

// NewDispatcher creates a dispatcher driving nav.
func NewDispatcher(nav Navigator) *Dispatcher {
	return &Dispatcher{nav: nav}
}

// Dispatch handles a chord. It returns true when the chord was consumed, in
// which case the caller must suppress the platform's default behavior for
// the key event.
func (d *Dispatcher) Dispatch(ch Chord) bool {
	if !ch.Ctrl && !ch.Meta {
		return false
	}

	switch ch.Key {
	case "ArrowLeft":
		d.nav.PrevMonth()
		return true
	case "ArrowRight":
		d.nav.NextMonth()
		return true
	default:
		return false
	}
}
