package swarmlist

import "testing"

func newTestTable(t *testing.T, ticksToInactive uint32, aging bool) *Table {
	t.Helper()
	return NewTable(1, Config{TicksToInactive: ticksToInactive, AgingEnabled: aging})
}

func TestFreshTableHasOwnerOnly(t *testing.T) {
	// Invariant 8: a fresh replica with only its owner reports size=1,
	// num_active=1.
	tbl := newTestTable(t, 100, true)
	if tbl.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", tbl.Size())
	}
	if tbl.NumActive() != 1 {
		t.Fatalf("NumActive() = %d, want 1", tbl.NumActive())
	}
	owner, err := tbl.Get(1)
	if err != nil {
		t.Fatalf("Get(owner) error: %v", err)
	}
	if owner.TimeToInactive() != 100 {
		t.Fatalf("owner tti = %d, want 100 (held at max)", owner.TimeToInactive())
	}
}

func TestGetUnknownIsNotFound(t *testing.T) {
	tbl := newTestTable(t, 100, true)
	if _, err := tbl.Get(99); err != ErrNotFound {
		t.Fatalf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestIdToIndexInvariant(t *testing.T) {
	// Invariant 1: for every id in the map, table[map[id]].id == id.
	tbl := newTestTable(t, 100, true)
	tbl.Update(2, 0x07, 5)
	tbl.Update(3, 0x00, 1)

	for id, idx := range tbl.idToIndex {
		if tbl.entries[idx].id != id {
			t.Fatalf("table[map[%d]] = %d, want %d", id, tbl.entries[idx].id, id)
		}
	}
	for _, e := range tbl.entries {
		if _, ok := tbl.idToIndex[e.id]; !ok {
			t.Fatalf("entry id %d missing from id-to-index map", e.id)
		}
	}
}

func TestUpdateNewEntryIncrementsSizeAndActive(t *testing.T) {
	tbl := newTestTable(t, 100, true)
	tbl.Update(2, 0x07, 5)

	if tbl.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", tbl.Size())
	}
	if tbl.NumActive() != 2 {
		t.Fatalf("NumActive() = %d, want 2", tbl.NumActive())
	}
	e, err := tbl.Get(2)
	if err != nil {
		t.Fatalf("Get(2) error: %v", err)
	}
	if e.SwarmMask() != 0x07 || e.Lamport() != 5 || e.TimeToInactive() != 100 {
		t.Fatalf("Get(2) = %+v, want mask=0x07 lamport=5 tti=100", e)
	}
}

func TestUpdateRecordsStatsForNonOwnerOnly(t *testing.T) {
	tbl := newTestTable(t, 100, true)
	tbl.Update(2, 0x07, 5)

	// Age entry 2 down to 40 before refreshing it, to give recordStats
	// a non-max value to observe.
	tbl.WithWriteLock(func(w *TableWriter) {
		for i := 0; i < w.Len(); i++ {
			e := w.EntryAt(i)
			if e.ID() == 2 {
				for e.TimeToInactive() > 40 {
					e.Tick()
				}
			}
		}
	})

	tbl.Update(2, 0x0F, 6)

	if tbl.HighestTTI() != 40 {
		t.Fatalf("HighestTTI() = %d, want 40", tbl.HighestTTI())
	}
	if tbl.AverageTTI() != 40 {
		t.Fatalf("AverageTTI() = %v, want 40", tbl.AverageTTI())
	}
}

func TestNumActiveInvariantAcrossAging(t *testing.T) {
	// Invariant 2 / scenario S4: after ticksToInactive ticks with no
	// incoming packets, every non-owner entry that existed at t=0 has
	// tti=0 and is inactive; num_active has decremented accordingly.
	tbl := newTestTable(t, 3, true)
	tbl.Update(2, 0, 1)
	tbl.Update(3, 0, 1)

	if tbl.NumActive() != 3 {
		t.Fatalf("NumActive() = %d, want 3", tbl.NumActive())
	}

	for tick := 0; tick < 3; tick++ {
		tbl.WithWriteLock(func(w *TableWriter) {
			for i := 0; i < w.Len(); i++ {
				e := w.EntryAt(i)
				if e.ID() == w.OwnerID() || e.TimeToInactive() == 0 {
					continue
				}
				e.Tick()
				if e.TimeToInactive() == 0 {
					w.DecrementActive()
				}
			}
		})
	}

	if tbl.NumActive() != 1 {
		t.Fatalf("NumActive() after aging = %d, want 1 (owner only)", tbl.NumActive())
	}
	e2, _ := tbl.Get(2)
	if e2.TimeToInactive() != 0 {
		t.Fatalf("Get(2).tti = %d, want 0", e2.TimeToInactive())
	}
}

func TestReactivationAfterAging(t *testing.T) {
	// Scenario S5: after an entry ages out, a fresh update reactivates
	// it and num_active increments again.
	tbl := newTestTable(t, 2, true)
	tbl.Update(2, 0, 1)
	tbl.WithWriteLock(func(w *TableWriter) {
		for i := 0; i < w.Len(); i++ {
			e := w.EntryAt(i)
			if e.ID() != 2 {
				continue
			}
			for e.TimeToInactive() > 0 {
				e.Tick()
			}
			w.DecrementActive()
		}
	})
	if tbl.NumActive() != 1 {
		t.Fatalf("NumActive() after expiry = %d, want 1", tbl.NumActive())
	}

	tbl.Update(2, 0x01, 10)

	if tbl.NumActive() != 2 {
		t.Fatalf("NumActive() after reactivation = %d, want 2", tbl.NumActive())
	}
	e2, _ := tbl.Get(2)
	if e2.TimeToInactive() != 2 {
		t.Fatalf("Get(2).tti = %d, want 2", e2.TimeToInactive())
	}
}

func TestAgingDisabledEntriesNeverExpire(t *testing.T) {
	tbl := NewTable(1, Config{TicksToInactive: 1, AgingEnabled: false})
	tbl.Update(2, 0, 1)

	if tbl.Size() != 2 {
		t.Fatalf("expected 2 entries, got %d", tbl.Size())
	}

	e2, _ := tbl.Get(2)
	if e2.TimeToInactive() == 0 {
		t.Fatalf("entry should not have aged when AgingEnabled is false")
	}
	if tbl.NumActive() != 2 {
		t.Fatalf("NumActive() = %d, want 2", tbl.NumActive())
	}
}

func TestForceConsensus(t *testing.T) {
	tbl := newTestTable(t, 100, true)
	tbl.Update(2, 0, 5)

	tbl.ForceConsensus([]RobotID{2, 3, 4})

	if tbl.Size() != 4 {
		t.Fatalf("Size() after ForceConsensus = %d, want 4", tbl.Size())
	}
	if tbl.NumActive() != 4 {
		t.Fatalf("NumActive() after ForceConsensus = %d, want 4", tbl.NumActive())
	}
	for _, id := range []RobotID{1, 2, 3, 4} {
		e, err := tbl.Get(id)
		if err != nil {
			t.Fatalf("Get(%d) error: %v", id, err)
		}
		if e.TimeToInactive() != 100 {
			t.Fatalf("Get(%d).tti = %d, want 100", id, e.TimeToInactive())
		}
	}
	e3, _ := tbl.Get(3)
	if e3.Lamport() != 0 || e3.SwarmMask() != 0 {
		t.Fatalf("newly created consensus entry = %+v, want zeroed mask/lamport", e3)
	}
}
