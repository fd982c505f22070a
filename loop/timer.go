package loop

import "time"

// Clock is the time source of the loop.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Timer paces the loop at a fixed interval without accumulating drift.
// After an overrun it skips the missed ticks instead of bursting.
type Timer struct {
	clock    Clock
	interval time.Duration
	next     time.Time
}

// NewTimer schedules the first tick immediately.
func NewTimer(clock Clock, interval time.Duration) *Timer {
	return &Timer{clock: clock, interval: interval, next: clock.Now()}
}

// Wait blocks until the current tick is due, then schedules the next one
// strictly after the present.
func (t *Timer) Wait() {
	now := t.clock.Now()
	if t.next.After(now) {
		t.clock.Sleep(t.next.Sub(now))
		now = t.clock.Now()
	}
	for !t.next.After(now) {
		t.next = t.next.Add(t.interval)
	}
}

// Next is when the following tick is due.
func (t *Timer) Next() time.Time {
	return t.next
}
