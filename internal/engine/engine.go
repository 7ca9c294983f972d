// Package engine orchestrates the edit → optimistic-update → send →
// confirm/rollback lifecycle for every editable field on the month grid.
//
// Each edit moves through a small state machine: Idle → Pending →
// {Confirmed, RolledBack}. Checkmarks flip their visual state before the
// request starts and are reverted to the recorded pre-click value if the
// save fails. Text, label, and selector fields keep the user's value on
// screen even when the save fails; the failure is only reported to the
// diagnostic log. That asymmetry is deliberate: a checkmark is binary and
// cheaply revertible, typed text is not worth destroying.
//
// Requests for distinct fields are fully independent and may complete in
// any order. Rapid clicks on the same checkmark each fire their own request;
// an edit generation counter per field makes sure a stale failure never
// overrides the optimistic state set by a newer click.
package engine

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kshaw/monthgrid/internal/debounce"
	"github.com/kshaw/monthgrid/internal/field"
	"github.com/kshaw/monthgrid/internal/guard"
	"github.com/kshaw/monthgrid/internal/syncclient"
)

// View is the UI surface the controller reads and mutates. In a browser
// host this is backed by the DOM; tests use an in-memory fake.
//
// Highlight is the transient "save landed" pulse; the duration varies by
// field kind. Implementations must be safe for concurrent use, since
// confirmations arrive on network completion goroutines.
type View interface {
	Checked(key field.Key) bool
	SetChecked(key field.Key, checked bool)
	SetLabel(key field.Key, name string)
	SetWordCount(key field.Key, words int)
	Highlight(key field.Key, d time.Duration)
}

// Highlight pulse durations per field kind.
const (
	highlightText  = 500 * time.Millisecond
	highlightCheck = 200 * time.Millisecond
	highlightLabel = time.Second
)

// Controller drives the optimistic sync lifecycle for one page of fields.
type Controller struct {
	client syncclient.Sender
	view   View
	guard  *guard.Guard
	logger *log.Logger
	delay  time.Duration

	// One scheduler per debounced text kind, both keyed by field.Key. The
	// one-liner and journal for the same day share a key, so they cannot
	// share a scheduler.
	oneLiners *debounce.Scheduler
	journals  *debounce.Scheduler

	mu  sync.Mutex
	gen map[editKey]uint64

	wg sync.WaitGroup
}

// editKey distinguishes edits to different kinds bound to the same key.
type editKey struct {
	kind field.Kind
	key  field.Key
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounceDelay overrides the text-field debounce window. Tests use
// short delays; production keeps the default 500ms.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller. The view must not be nil; the client performs
// the actual network round-trips.
func New(client syncclient.Sender, view View, g *guard.Guard, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		view:      view,
		guard:     g,
		logger:    log.New(os.Stderr, "[engine] ", log.LstdFlags),
		delay:     debounce.DefaultDelay,
		oneLiners: debounce.NewScheduler(),
		journals:  debounce.NewScheduler(),
		gen:       make(map[editKey]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Guard returns the unsaved-changes guard the controller feeds.
func (c *Controller) Guard() *guard.Guard {
	return c.guard
}

// OneLinerChanged handles an input event on a daily one-liner. The send is
// debounced: a burst of keystrokes inside the window produces exactly one
// request carrying the final text.
func (c *Controller) OneLinerChanged(key field.Key, text string) error {
	if err := key.Validate(field.KindOneLiner); err != nil {
		return err
	}
	c.guard.MarkDirty()

	gen := c.bump(field.KindOneLiner, key)
	c.oneLiners.Schedule(key, c.delay, func() {
		c.dispatch(field.KindOneLiner, key, gen, field.OneLinerPayload{
			Year: key.Year, Month: key.Month, Day: key.Day, Text: text,
		}, c.confirmText(key, highlightText), nil)
	})
	return nil
}

// JournalChanged handles an input event on the detailed journal. Debounced
// like the one-liner; a confirmed save carries the recomputed word count.
func (c *Controller) JournalChanged(key field.Key, text string) error {
	if err := key.Validate(field.KindJournal); err != nil {
		return err
	}
	c.guard.MarkDirty()

	gen := c.bump(field.KindJournal, key)
	c.journals.Schedule(key, c.delay, func() {
		c.dispatch(field.KindJournal, key, gen, field.JournalPayload{
			Year: key.Year, Month: key.Month, Day: key.Day, Text: text,
		}, func(res syncclient.Result) {
			c.view.SetWordCount(key, res.WordCount)
			c.view.Highlight(key, highlightText)
		}, nil)
	})
	return nil
}

// CheckmarkClicked handles a click on a habit checkmark. The visual state
// flips immediately, before the request starts; every click fires its own
// request, with no suppression of rapid double-clicks.
func (c *Controller) CheckmarkClicked(key field.Key) error {
	if err := key.Validate(field.KindHabitCheck); err != nil {
		return err
	}
	c.guard.MarkDirty()

	prev := c.view.Checked(key)
	next := !prev
	c.view.SetChecked(key, next)

	gen := c.bump(field.KindHabitCheck, key)
	c.dispatch(field.KindHabitCheck, key, gen, field.HabitCheckPayload{
		Year: key.Year, Month: key.Month, Day: key.Day,
		HabitNumber: key.Habit, Checked: next,
	}, func(syncclient.Result) {
		c.view.Highlight(key, highlightCheck)
	}, func() {
		// Restore the recorded pre-click value, not a blind toggle.
		c.view.SetChecked(key, prev)
	})
	return nil
}

// LabelBlurred handles a blur (or Enter) on a habit label. A name that
// trims to empty never reaches the network: the label is reset locally to
// its default and the edit stays Idle.
func (c *Controller) LabelBlurred(key field.Key, name string) error {
	if err := key.Validate(field.KindHabitLabel); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		c.view.SetLabel(key, field.DefaultLabel(key.Habit))
		return nil
	}
	c.guard.MarkDirty()

	gen := c.bump(field.KindHabitLabel, key)
	c.dispatch(field.KindHabitLabel, key, gen, field.HabitLabelPayload{
		Year: key.Year, Month: key.Month, HabitNumber: key.Habit, Name: trimmed,
	}, c.confirmText(key, highlightLabel), nil)
	return nil
}

// BestDayChanged handles a change on the best-day selector. An unset
// selection (day 0) never produces a request.
func (c *Controller) BestDayChanged(key field.Key, day int) error {
	if err := key.Validate(field.KindBestDay); err != nil {
		return err
	}
	if day == 0 {
		return nil
	}
	c.guard.MarkDirty()

	gen := c.bump(field.KindBestDay, key)
	c.dispatch(field.KindBestDay, key, gen, field.BestDayPayload{
		Year: key.Year, Month: key.Month, BestDay: day,
	}, c.confirmText(key, highlightLabel), nil)
	return nil
}

// ClickObserved forwards a document-level click to the guard, arming the
// one-second clear timer.
func (c *Controller) ClickObserved() {
	c.guard.ClickObserved()
}

// ConfirmUnload reports whether a navigation away from the page should
// request the browser confirmation prompt.
func (c *Controller) ConfirmUnload() bool {
	return c.guard.ConfirmUnload()
}

// Wait blocks until every dispatched request has resolved. Pending debounce
// timers are not flushed; callers that want their edits sent must let the
// window elapse first.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels pending debounce timers and waits for in-flight requests.
func (c *Controller) Close() {
	c.oneLiners.CancelAll()
	c.journals.CancelAll()
	c.wg.Wait()
}

// confirmText is the shared success reaction for fields whose optimistic
// value already reflects the save: pulse the highlight, change nothing.
func (c *Controller) confirmText(key field.Key, d time.Duration) func(syncclient.Result) {
	return func(syncclient.Result) {
		c.view.Highlight(key, d)
	}
}

// bump advances the edit generation for (kind, key) and returns it.
func (c *Controller) bump(kind field.Kind, key field.Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ek := editKey{kind: kind, key: key}
	c.gen[ek]++
	return c.gen[ek]
}

// current reports whether gen is still the newest edit for (kind, key).
func (c *Controller) current(kind field.Kind, key field.Key, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[editKey{kind: kind, key: key}] == gen
}

// dispatch moves an edit into Pending: it sends the payload and reconciles
// on completion. onSuccess runs when the save is confirmed. onRollback, if
// non-nil, runs when the save fails and this edit is still the newest for
// its field; a failure belonging to a superseded edit only logs, so it
// cannot clobber a newer optimistic state.
func (c *Controller) dispatch(kind field.Kind, key field.Key, gen uint64, payload any, onSuccess func(syncclient.Result), onRollback func()) {
	c.guard.RequestStarted()
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		defer c.guard.RequestFinished()

		res := c.client.Send(context.Background(), kind.Endpoint(), payload)
		if res.OK() {
			if onSuccess != nil {
				onSuccess(res)
			}
			return
		}

		// Failures are reported to the diagnostic channel, never to the
		// user as a blocking alert.
		if res.Err != nil {
			c.logger.Printf("save failed for %s %s: %v", kind, key, res.Err)
		} else {
			c.logger.Printf("save rejected for %s %s: status=%q error=%q", kind, key, res.Status, res.Error)
		}

		if onRollback != nil && c.current(kind, key, gen) {
			onRollback()
		}
	}()
}
