package game

import (
	"time"
)

const tickInterval = time.Second

// Timer is the countdown for a single active question. Every Start opens a
// new generation; callbacks carry the generation they were scheduled for so
// the owner can drop anything that belongs to a stopped countdown.
//
// Timer does no locking of its own. The owning session calls it under its
// mutex and re-checks Current from inside the callbacks.
type Timer struct {
	clock    Clock
	onExpire func(gen uint64)
	onTick   func(gen uint64, remainingSec int)

	gen       uint64
	running   bool
	deadline  time.Time
	remaining time.Duration
	stops     []func() bool
}

func NewTimer(clock Clock, onExpire func(gen uint64), onTick func(gen uint64, remainingSec int)) *Timer {
	return &Timer{
		clock:    clock,
		onExpire: onExpire,
		onTick:   onTick,
	}
}

// Start cancels any running countdown and starts a new one of length d.
func (t *Timer) Start(d time.Duration) uint64 {
	t.Stop()

	t.gen++
	gen := t.gen
	t.running = true
	t.remaining = d
	t.deadline = t.clock.Now().Add(d)

	t.stops = append(t.stops, t.clock.AfterFunc(d, func() {
		t.onExpire(gen)
	}))

	if t.onTick != nil {
		// One advisory tick each time the remaining time crosses a whole second.
		whole := int((d + tickInterval - 1) / tickInterval)
		for n := whole - 1; n >= 1; n-- {
			at := d - time.Duration(n)*tickInterval
			remaining := n
			t.stops = append(t.stops, t.clock.AfterFunc(at, func() {
				t.onTick(gen, remaining)
			}))
		}
	}

	return gen
}

// Stop cancels the countdown and returns the time that was left on it.
// Callbacks already in flight become stale.
func (t *Timer) Stop() time.Duration {
	for _, stop := range t.stops {
		stop()
	}
	t.stops = nil

	if !t.running {
		return t.remaining
	}
	t.running = false
	t.gen++
	t.remaining = max(t.deadline.Sub(t.clock.Now()), 0)
	return t.remaining
}

// Resume restarts a stopped countdown with the time it had left.
func (t *Timer) Resume() uint64 {
	return t.Start(t.remaining)
}

func (t *Timer) Remaining() time.Duration {
	if t.running {
		return max(t.deadline.Sub(t.clock.Now()), 0)
	}
	return t.remaining
}

func (t *Timer) Running() bool {
	return t.running
}

// Current reports whether gen belongs to the countdown that is running now.
func (t *Timer) Current(gen uint64) bool {
	return t.running && gen == t.gen
}
