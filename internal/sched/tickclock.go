// internal/sched/tickclock.go

package sched

import "sync/atomic"

// TickClock counts simulated ticks. It only moves when a slice is executed,
// there is no wall-clock behind it.
type TickClock struct {
	count atomic.Int64
}

// Advance moves the clock forward by n ticks and returns the new count.
func (c *TickClock) Advance(n int64) int64 {
	return c.count.Add(n)
}

// Count returns the current tick count atomically.
func (c *TickClock) Count() int64 {
	return c.count.Load()
}
