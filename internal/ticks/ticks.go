package ticks

import "time"

// Millisecond tick counter that wraps at 2^32.
//
// Raw tick values must never be compared directly; elapsed time is always the
// signed difference, which stays correct across a counter wrap as long as the
// two ticks are less than half the modulus apart.

type T uint32

// Diff returns a-b as elapsed milliseconds, wraparound-safe.
func Diff(a, b T) int32 {
	return int32(a - b)
}

// Add advances t by d milliseconds, wrapping naturally.
func Add(t T, d int32) T {
	return t + T(d)
}

// Clock provides the current tick. Injected so tests (and the simulator) can
// run the control loop against a scripted timeline.
type Clock interface {
	Now() T
}

type wallClock struct {
	start time.Time
}

// NewWallClock returns a Clock counting milliseconds from now.
func NewWallClock() Clock {
	return &wallClock{start: time.Now()}
}

func (c *wallClock) Now() T {
	return T(time.Since(c.start).Milliseconds())
}
