package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock counts mutations of a session. Every applied, undone or redone
// action advances it by one, so observers can tell two states apart without
// comparing strokes.
type Clock struct {
	counter atomic.Uint64
}

// Tick advances the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	return c.counter.Add(1)
}

// Now returns the current value without advancing.
func (c *Clock) Now() uint64 {
	return c.counter.Load()
}

// Observe moves the clock forward to v if it is behind. Used when a session
// is restored from a snapshot taken at a later revision.
func (c *Clock) Observe(v uint64) {
	for {
		cur := c.counter.Load()
		if v <= cur || c.counter.CompareAndSwap(cur, v) {
			return
		}
	}
}

func newID() string {
	return uuid.NewString()
}
