package usecases

import "sync/atomic"

// Generation is the engine's sole cancellation primitive: a monotonically
// increasing counter that tags every asynchronous chain. A chain captures
// the counter at entry and re-reads it after every suspension point
// (provider call, animation frame, timed pause); on mismatch it unwinds
// without mutating renderer or camera state. Stale chains are never
// force-killed, they exit voluntarily at the next check.
type Generation struct {
	n atomic.Int64
}

// Next invalidates all in-flight chains and returns the new current value.
func (g *Generation) Next() int64 {
	return g.n.Add(1)
}

// Current returns the value a new chain should capture.
func (g *Generation) Current() int64 {
	return g.n.Load()
}

// IsCurrent reports whether a captured value is still the live generation.
func (g *Generation) IsCurrent(v int64) bool {
	return g.n.Load() == v
}
