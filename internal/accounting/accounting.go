// Package accounting tracks process-wide totals shared across every
// swarmlist replica hosted in one process, such as a simulator running
// many robots in a single binary. It is an explicitly constructed handle
// rather than a package-level global, so ownership and lifetime are
// visible at the call site instead of hidden behind static state.
package accounting

import "sync"

// GlobalActive tracks the sum, over every replica sharing this handle,
// of the number of active entries. A single-threaded simulator driver
// that steps replicas one at a time never contends on the mutex; a
// multi-threaded host must still go through Apply to stay correct.
type GlobalActive struct {
	mu    sync.Mutex
	total int64
}

// NewGlobalActive returns a zeroed handle ready to be shared across
// replicas.
func NewGlobalActive() *GlobalActive {
	return &GlobalActive{}
}

// Apply adjusts the running total by delta and returns the new total.
// A replica calls this whenever its own num_active changes, passing the
// signed difference.
func (g *GlobalActive) Apply(delta int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.total += delta
	return g.total
}

// Total returns the current process-wide active-entry count.
func (g *GlobalActive) Total() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}
