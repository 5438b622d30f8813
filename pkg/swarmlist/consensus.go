package swarmlist

// ForceConsensus places the table in a known-synchronized state, per
// spec section 4.H: every id in existingRobots gets an entry (created
// with Lamport 0 and a zero mask if missing), and every entry's
// countdown -- including ones not in existingRobots -- is reset to the
// configured maximum. Used by test harnesses to measure propagation
// latency from a known-synchronized starting state.
//
// Randomizing the broadcast cursor is the caller's responsibility
// (pkg/replica owns the scheduler); this method only touches the table.
func (t *Table) ForceConsensus(existingRobots []RobotID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range existingRobots {
		if _, ok := t.idToIndex[id]; !ok {
			t.appendLocked(NewEntry(id, 0, 0, 0))
		}
	}

	for i := range t.entries {
		e := &t.entries[i]
		wasActive := e.IsActive(t.ownerID)
		e.ResetTimer(t.ticksToInactive)
		if !wasActive {
			t.adjustActiveLocked(1)
		}
	}
}
