package riftplot

import "time"

// DefaultDebounce is the quiet period after the last edit before the scene
// is re-evaluated.
const DefaultDebounce = time.Second

// Clock supplies the current time. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// PendingEvaluation is a scheduled, not yet fired re-evaluation.
type PendingEvaluation struct {
	ID  uint64
	Due time.Time
}

// Debouncer collapses bursts of edits into a single deferred evaluation.
// It owns no goroutine or timer: the frame loop calls Poll, so firing happens
// on the same execution context as everything else.
type Debouncer struct {
	// Window is the quiet period. Changing it affects edits made afterwards.
	Window time.Duration

	clock   Clock
	fire    func()
	pending *PendingEvaluation
	nextID  uint64

	fired     int
	cancelled int
}

// NewDebouncer creates a debouncer that calls fire once the window has
// elapsed after the last edit. A zero window uses DefaultDebounce.
func NewDebouncer(window time.Duration, clock Clock, fire func()) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer{Window: window, clock: clock, fire: fire}
}

// OnEdit cancels the pending evaluation, if any, and schedules a new one
// Window after now.
func (d *Debouncer) OnEdit() {
	if d.pending != nil {
		d.cancelled++
	}
	d.nextID++
	d.pending = &PendingEvaluation{ID: d.nextID, Due: d.clock.Now().Add(d.Window)}
}

// Cancel drops the pending evaluation without firing it. It reports whether
// one was pending.
func (d *Debouncer) Cancel() bool {
	if d.pending == nil {
		return false
	}
	d.pending = nil
	d.cancelled++
	return true
}

// Pending returns a copy of the pending evaluation, or nil.
func (d *Debouncer) Pending() *PendingEvaluation {
	if d.pending == nil {
		return nil
	}
	p := *d.pending
	return &p
}

// Poll fires the pending evaluation if it is due at now. The handle is
// cleared before fire runs, so an edit made from inside fire schedules a
// fresh evaluation. Poll reports whether it fired.
func (d *Debouncer) Poll(now time.Time) bool {
	if d.pending == nil || now.Before(d.pending.Due) {
		return false
	}
	d.pending = nil
	d.fired++
	if d.fire != nil {
		d.fire()
	}
	return true
}

// Counts returns how many evaluations fired and how many were cancelled.
func (d *Debouncer) Counts() (fired, cancelled int) {
	return d.fired, d.cancelled
}
