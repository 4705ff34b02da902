package riftplot

import (
	"testing"
	"time"
)

type manualClock struct{ now time.Time }

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestDebounceBurstFiresOnce(t *testing.T) {
	clock := newManualClock()
	start := clock.Now()
	var firedAt []time.Duration
	d := NewDebouncer(time.Second, clock, func() {
		firedAt = append(firedAt, clock.Now().Sub(start))
	})

	d.OnEdit() // t=0
	clock.Advance(500 * time.Millisecond)
	d.Poll(clock.Now())
	d.OnEdit() // t=500ms

	for clock.Now().Sub(start) < 3*time.Second {
		clock.Advance(100 * time.Millisecond)
		d.Poll(clock.Now())
	}

	if len(firedAt) != 1 {
		t.Fatalf("fired %d times, want 1", len(firedAt))
	}
	if firedAt[0] != 1500*time.Millisecond {
		t.Errorf("fired at %v, want 1.5s", firedAt[0])
	}
	fired, cancelled := d.Counts()
	if fired != 1 || cancelled != 1 {
		t.Errorf("fired=%d cancelled=%d, want 1 and 1", fired, cancelled)
	}
}

func TestDebounceNotDueYet(t *testing.T) {
	clock := newManualClock()
	calls := 0
	d := NewDebouncer(time.Second, clock, func() { calls++ })
	d.OnEdit()
	clock.Advance(999 * time.Millisecond)
	if d.Poll(clock.Now()) || calls != 0 {
		t.Error("fired before the window elapsed")
	}
	if d.Pending() == nil {
		t.Error("pending evaluation lost")
	}
}

func TestDebounceCancel(t *testing.T) {
	clock := newManualClock()
	calls := 0
	d := NewDebouncer(time.Second, clock, func() { calls++ })
	if d.Cancel() {
		t.Error("Cancel with nothing pending reported true")
	}
	d.OnEdit()
	if !d.Cancel() {
		t.Error("Cancel reported false")
	}
	clock.Advance(2 * time.Second)
	d.Poll(clock.Now())
	if calls != 0 || d.Pending() != nil {
		t.Errorf("calls=%d pending=%v after cancel", calls, d.Pending())
	}
}

func TestDebounceEachEditGetsNewID(t *testing.T) {
	d := NewDebouncer(0, newManualClock(), nil)
	if d.Window != DefaultDebounce {
		t.Errorf("Window = %v, want default", d.Window)
	}
	d.OnEdit()
	first := d.Pending()
	d.OnEdit()
	second := d.Pending()
	if first.ID == second.ID {
		t.Error("replacement evaluation reused the ID")
	}
}

func TestDebounceEditDuringFireReschedules(t *testing.T) {
	clock := newManualClock()
	var d *Debouncer
	calls := 0
	d = NewDebouncer(time.Second, clock, func() {
		calls++
		if calls == 1 {
			d.OnEdit()
		}
	})
	d.OnEdit()
	clock.Advance(time.Second)
	d.Poll(clock.Now())
	if d.Pending() == nil {
		t.Fatal("edit made while firing was dropped")
	}
	clock.Advance(time.Second)
	d.Poll(clock.Now())
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
