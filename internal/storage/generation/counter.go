// Package generation provides the change-detection counter for Dew.
//
// The counter is bumped once per successful mutation. Clients poll it and
// re-fetch the full todo list whenever it moves; no finer-grained diff
// exists. It starts at zero on every process start and is never persisted.
package generation

import "sync/atomic"

// Counter is a monotonically increasing, lock-free generation counter.
// The zero value is ready to use.
type Counter struct {
	value atomic.Uint64
}

// New creates a counter starting at zero.
func New() *Counter {
	return &Counter{}
}

// Current returns the present value.
func (c *Counter) Current() uint64 {
	return c.value.Load()
}

// Advance increments the counter and returns the new value.
func (c *Counter) Advance() uint64 {
	return c.value.Add(1)
}
