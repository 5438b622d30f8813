// Package lamport implements the circular Lamport clock comparator used
// to decide whether an incoming swarmlist entry is newer than a stored
// one.
//
// A Lamport clock here is not a timestamp: it is a bounded-width counter
// that wraps modulo 2^W. Two implementation rules govern ordering:
//
//	newer-than: a_new is newer than a_old if a_new is strictly ahead of
//	            a_old by at most THRESHOLD ticks, accounting for wraparound.
//	tie rule:   a_new == a_old is never "newer" (the comparison is strict).
//
// The THRESHOLD bounds how far ahead a clock may be and still be trusted
// as new; this keeps a replayed or stale value from appearing newer than
// the current value once the counter has wrapped around.
//
// Sustained isolation longer than roughly 2^W - THRESHOLD ticks makes a
// returning peer's stored clock unrecoverably ambiguous: there is no way
// to tell a genuinely new value from one that has wrapped all the way
// around. This is an accepted limitation, not a bug.
package lamport

import "golang.org/x/exp/constraints"

// DefaultThreshold is the maximum forward distance considered "newer".
const DefaultThreshold = 50

// Newer reports whether newValue represents a strictly newer event than
// oldValue, under modular arithmetic on a ring of width W bits (the bit
// width of T), with the given acceptance threshold.
func Newer[T constraints.Unsigned](newValue, oldValue T, threshold T) bool {
	max := ^T(0) // 2^W - 1

	if max-oldValue < threshold {
		// Acceptance window wraps past the top of the ring.
		return newValue > oldValue || newValue <= oldValue+threshold
	}
	return oldValue < newValue && newValue <= oldValue+threshold
}

// Newer8 compares two 8-bit Lamport clocks using DefaultThreshold. This is
// the width used by the swarmlist entry's Lamport field.
func Newer8(newValue, oldValue uint8) bool {
	return Newer(newValue, oldValue, uint8(DefaultThreshold))
}

// Comparator bundles a bit width and threshold so callers that need a
// configurable threshold (rather than the package default) don't have to
// thread the threshold value through every call site.
type Comparator[T constraints.Unsigned] struct {
	Threshold T
}

// NewComparator builds a Comparator with the given threshold.
func NewComparator[T constraints.Unsigned](threshold T) Comparator[T] {
	return Comparator[T]{Threshold: threshold}
}

// Newer reports whether newValue is newer than oldValue under c's
// threshold.
func (c Comparator[T]) Newer(newValue, oldValue T) bool {
	return Newer(newValue, oldValue, c.Threshold)
}
