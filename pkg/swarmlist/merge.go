package swarmlist

import "github.com/arenafleet/swarmlist/pkg/lamport"

// Merger applies incoming (id, mask, lamport) observations to a Table
// using the circular Lamport comparator, per spec section 4.G. It is
// the receive-side counterpart of the round-robin scheduler/encoder on
// the send side.
//
// Grounded on the teacher's gossip.MemberList.ApplyDelta(d Delta) bool
// shape: there, a delta is accepted or rejected by comparing
// Incarnation numbers; here the gate is the Lamport comparator instead.
type Merger struct {
	table      *Table
	comparator lamport.Comparator[uint8]
}

// NewMerger builds a Merger over table using the given Lamport
// threshold.
func NewMerger(table *Table, threshold uint8) *Merger {
	return &Merger{
		table:      table,
		comparator: lamport.NewComparator(threshold),
	}
}

// Merge applies one incoming entry. It never returns an error: gossip is
// best-effort, and an incoming observation that loses to the local
// state is simply discarded (idempotent under replay and reordering
// within the threshold window).
func (m *Merger) Merge(id RobotID, mask uint8, clock uint8) {
	// Step 1: never let the network overwrite the owner's own state.
	if id == m.table.ownerID {
		return
	}

	local, err := m.table.Get(id)
	if err != nil {
		// Step 2: unknown id, create fresh. Table.Update handles the
		// num_active bookkeeping for a brand new, always-active entry.
		m.table.Update(id, mask, clock)
		return
	}

	// Step 3/4: known id, apply only if the incoming clock is strictly
	// newer under the circular comparator. A tie or a clock within the
	// comparator's rejection zone leaves the stored entry untouched.
	if !m.comparator.Newer(clock, local.Lamport()) {
		return
	}
	m.table.Update(id, mask, clock)
}
