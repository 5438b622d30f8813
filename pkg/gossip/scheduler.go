// Package gossip implements the fixed-layout wire encoding and the
// round-robin broadcast scheduler that bound per-tick bandwidth for the
// swarmlist gossip protocol.
package gossip

import (
	"math/rand/v2"
	"sync"
)

// Scheduler walks a table of size N round-robin, handing out the next
// index to broadcast each call and wrapping back to zero. Newly
// appended entries are picked up only once the cursor passes their
// position, same as original_source's _next/_getNext.
type Scheduler struct {
	mu   sync.Mutex
	next int
}

// NewScheduler returns a scheduler starting at index 0.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// NextIndex returns the current cursor and advances it by one, wrapping
// modulo size. size must be > 0.
func (s *Scheduler) NextIndex(size int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size <= 0 {
		return 0
	}
	idx := s.next % size
	s.next = (idx + 1) % size
	return idx
}

// Cursor returns the current cursor position without advancing it.
func (s *Scheduler) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Randomize seeds the cursor uniformly at random in [0, size). Used by
// force-consensus to seed a new propagation-latency experiment.
func (s *Scheduler) Randomize(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size <= 0 {
		s.next = 0
		return
	}
	s.next = rand.IntN(size)
}
