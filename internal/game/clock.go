package game

import "time"

// Clock is the time source and scheduler used by sessions and timers.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once after d and returns a stop function with the
	// semantics of time.Timer.Stop.
	AfterFunc(d time.Duration, f func()) func() bool
}

type systemClock struct{}

func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
