package game

import (
	"testing"
	"time"

	"github.com/bpadilla17/radladder-game/internal/game/gametest"
)

type timerRecorder struct {
	timer   *Timer
	expired []uint64
	ticks   []int
}

func newTimerRecorder(clock Clock) *timerRecorder {
	r := &timerRecorder{}
	r.timer = NewTimer(clock, func(gen uint64) {
		if r.timer.Current(gen) {
			r.expired = append(r.expired, gen)
		}
	}, func(gen uint64, remaining int) {
		if r.timer.Current(gen) {
			r.ticks = append(r.ticks, remaining)
		}
	})
	return r
}

func TestTimerFiresOnceWithTicks(t *testing.T) {
	clock := gametest.NewClock(time.Unix(0, 0))
	r := newTimerRecorder(clock)

	r.timer.Start(5 * time.Second)
	clock.Advance(10 * time.Second)

	if len(r.expired) != 1 {
		t.Fatalf("Expected exactly one expiry, got %d", len(r.expired))
	}
	want := []int{4, 3, 2, 1}
	if len(r.ticks) != len(want) {
		t.Fatalf("Expected ticks %v, got %v", want, r.ticks)
	}
	for i := range want {
		if r.ticks[i] != want[i] {
			t.Errorf("tick %d: expected %d, got %d", i, want[i], r.ticks[i])
		}
	}
}

func TestTimerStopPreventsExpiry(t *testing.T) {
	clock := gametest.NewClock(time.Unix(0, 0))
	r := newTimerRecorder(clock)

	r.timer.Start(5 * time.Second)
	clock.Advance(2 * time.Second)
	remaining := r.timer.Stop()
	clock.Advance(10 * time.Second)

	if len(r.expired) != 0 {
		t.Errorf("Expected no expiry after stop, got %d", len(r.expired))
	}
	if remaining != 3*time.Second {
		t.Errorf("Expected 3s remaining, got %v", remaining)
	}
	if clock.Pending() != 0 {
		t.Errorf("Expected no pending callbacks, got %d", clock.Pending())
	}
}

func TestTimerStaleGenerationIgnored(t *testing.T) {
	clock := gametest.NewClock(time.Unix(0, 0))
	r := newTimerRecorder(clock)

	gen := r.timer.Start(5 * time.Second)
	r.timer.Stop()

	if r.timer.Current(gen) {
		t.Error("Expected stopped generation to be stale")
	}

	next := r.timer.Start(5 * time.Second)
	if next == gen || !r.timer.Current(next) {
		t.Error("Expected a fresh current generation after restart")
	}
}

func TestTimerResumeKeepsRemaining(t *testing.T) {
	clock := gametest.NewClock(time.Unix(0, 0))
	r := newTimerRecorder(clock)

	r.timer.Start(10 * time.Second)
	clock.Advance(4 * time.Second)
	r.timer.Stop()
	clock.Advance(time.Minute)

	r.timer.Resume()
	if got := r.timer.Remaining(); got != 6*time.Second {
		t.Fatalf("Expected 6s remaining after resume, got %v", got)
	}

	clock.Advance(5 * time.Second)
	if len(r.expired) != 0 {
		t.Fatal("Expired too early after resume")
	}
	clock.Advance(time.Second)
	if len(r.expired) != 1 {
		t.Errorf("Expected expiry after resumed time ran out, got %d", len(r.expired))
	}
}
