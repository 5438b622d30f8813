package swarmlist

import "errors"

// ErrNotFound is returned by Table.Get when the queried robot id is
// unknown.
var ErrNotFound = errors.New("swarmlist: robot id not found")

// InvariantViolationError marks an internal bug: the table and its
// id-to-index map have disagreed. It is never returned from normal
// operation and should be treated as fatal by callers, the way
// original_source's std::out_of_range on a corrupt table would have
// been.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "swarmlist: invariant violation: " + e.Reason
}
