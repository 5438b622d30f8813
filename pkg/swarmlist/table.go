package swarmlist

import (
	"sync"

	"github.com/arenafleet/swarmlist/internal/accounting"
)

// Table is the dense, insertion-ordered collection of entries a replica
// holds, plus a robot-id to index map for O(1) average lookup. It
// mirrors the arena+index pattern: entries are never removed, only
// appended or updated in place, so an index passed to At() remains
// valid for the life of the table.
//
// Reads (Get, Size, NumActive, At) take the read lock so a metrics
// scraper or HTTP introspection handler running on another goroutine
// can observe a consistent snapshot without blocking or racing the
// single-threaded replica driver that owns all the writes.
type Table struct {
	mu sync.RWMutex

	ownerID         RobotID
	ticksToInactive uint32
	agingEnabled    bool

	entries   []Entry
	idToIndex map[RobotID]int

	numActive int64

	highestTTI uint32
	ttiSum     uint64
	numUpdates uint64

	global *accounting.GlobalActive
}

// Config bundles the table's immutable startup configuration.
type Config struct {
	TicksToInactive uint32
	AgingEnabled    bool
	Global          *accounting.GlobalActive
}

// NewTable constructs a table with only the owner entry present, as
// init() requires. The owner's Lamport starts at zero and its countdown
// is held at the configured maximum.
func NewTable(ownerID RobotID, cfg Config) *Table {
	if cfg.TicksToInactive == 0 {
		panic("swarmlist: ticks_to_inactive must be >= 1")
	}
	global := cfg.Global
	if global == nil {
		global = accounting.NewGlobalActive()
	}
	t := &Table{
		ownerID:         ownerID,
		ticksToInactive: cfg.TicksToInactive,
		agingEnabled:    cfg.AgingEnabled,
		idToIndex:       make(map[RobotID]int),
		global:          global,
	}
	t.appendLocked(NewEntry(ownerID, 0, 0, cfg.TicksToInactive))
	t.numActive = 1
	t.global.Apply(1)
	return t
}

// OwnerID returns the id of the robot this table belongs to.
func (t *Table) OwnerID() RobotID { return t.ownerID }

// TicksToInactive returns the configured countdown maximum.
func (t *Table) TicksToInactive() uint32 { return t.ticksToInactive }

// AgingEnabled reports whether inactivity aging is enabled.
func (t *Table) AgingEnabled() bool { return t.agingEnabled }

// Size returns the total number of entries, active or not.
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// NumActive returns the number of entries currently considered active.
// The owner always counts as active.
func (t *Table) NumActive() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.numActive
}

// HighestTTI returns the highest time-to-inactive observed on any entry
// immediately before an update reset it.
func (t *Table) HighestTTI() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.highestTTI
}

// AverageTTI returns tti_sum / num_updates, or 0 if there have been no
// updates yet.
func (t *Table) AverageTTI() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.numUpdates == 0 {
		return 0
	}
	return float64(t.ttiSum) / float64(t.numUpdates)
}

// At returns a copy of the entry at index idx. Callers obtain idx from
// the round-robin scheduler.
func (t *Table) At(idx int) Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[idx]
}

// Get returns a copy of the entry for id, or ErrNotFound if id is
// unknown.
func (t *Table) Get(id RobotID) (Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.idToIndex[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return t.entries[idx], nil
}

// checkInvariantLocked panics with InvariantViolationError if the table
// and its id-to-index map have disagreed. Called defensively around the
// mutation paths; cheap relative to the rest of a tick.
func (t *Table) checkInvariantLocked(id RobotID, idx int) {
	if idx < 0 || idx >= len(t.entries) {
		panic(&InvariantViolationError{Reason: "index out of range for id-to-index map"})
	}
	if t.entries[idx].id != id {
		panic(&InvariantViolationError{Reason: "id-to-index map disagrees with table contents"})
	}
}

// Set upserts entry. If its id is new, it is appended and the map is
// updated; num_active is adjusted if the new entry is active. If the id
// already exists, the stored entry is replaced outright (not merged) --
// callers that want merge semantics should use Update or a Merger, not
// Set directly.
func (t *Table) Set(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.idToIndex[entry.id]
	if !ok {
		t.appendLocked(entry)
		if entry.IsActive(t.ownerID) {
			t.adjustActiveLocked(1)
		}
		return
	}
	t.checkInvariantLocked(entry.id, idx)

	wasActive := t.entries[idx].IsActive(t.ownerID)
	t.entries[idx] = entry
	nowActive := entry.IsActive(t.ownerID)
	if !wasActive && nowActive {
		t.adjustActiveLocked(1)
	} else if wasActive && !nowActive {
		t.adjustActiveLocked(-1)
	}
}

// Update applies a fresher observation for an existing or new id: sets
// the mask and Lamport and resets the countdown. For an existing
// non-owner entry, it also records the tti statistics described in
// spec section 4.D: highest_tti is the maximum observed countdown
// immediately before this reset, and tti_sum/num_updates feed
// average_tti. A brand-new entry (first sighting of id) never records
// stats -- only a refresh of an already-known entry does, per merge
// step 3 vs step 2.
//
// If id is unknown, a new entry is created first (as in merge step 2).
// If the entry was inactive before this call, num_active is incremented.
func (t *Table) Update(id RobotID, mask uint8, clock uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.idToIndex[id]
	if !ok {
		// Step 2 (creation) never records stats -- only step 3 (applying
		// an update to an existing entry) does, per spec section 4.G.
		t.appendLocked(NewEntry(id, mask, clock, t.ticksToInactive))
		t.adjustActiveLocked(1)
		return
	}
	t.checkInvariantLocked(id, idx)

	e := &t.entries[idx]
	wasActive := e.IsActive(t.ownerID)

	if id != t.ownerID {
		t.recordStatsLocked(e.timeToInactive)
	}

	e.SetSwarmMask(mask)
	e.SetLamport(clock)
	e.ResetTimer(t.ticksToInactive)

	if !wasActive {
		t.adjustActiveLocked(1)
	}
}

// recordStatsLocked updates highest_tti/tti_sum/num_updates using the
// countdown value observed immediately before an update resets it.
func (t *Table) recordStatsLocked(ttiBeforeReset uint32) {
	if ttiBeforeReset > t.highestTTI {
		t.highestTTI = ttiBeforeReset
	}
	t.ttiSum += uint64(ttiBeforeReset)
	t.numUpdates++
}

func (t *Table) appendLocked(entry Entry) {
	t.idToIndex[entry.id] = len(t.entries)
	t.entries = append(t.entries, entry)
}

func (t *Table) adjustActiveLocked(delta int64) {
	t.numActive += delta
	t.global.Apply(delta)
}

// Lock-holding accessor pair used by the tick engine, which
// already knows it is the sole writer and needs direct index access for
// aging every non-owner entry without taking the lock once per entry.

// WithWriteLock runs fn while holding the table's write lock, giving the
// tick engine (pkg/replica) exclusive access to mutate every entry in
// one critical section instead of one RWMutex round trip per entry.
func (t *Table) WithWriteLock(fn func(w *TableWriter)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&TableWriter{t: t})
}

// TableWriter exposes the mutation primitives the tick engine needs
// while the table's write lock is already held, so aging N entries costs
// one lock acquisition instead of N.
type TableWriter struct{ t *Table }

// Len returns the number of entries.
func (w *TableWriter) Len() int { return len(w.t.entries) }

// EntryAt returns a pointer to the entry at idx, valid only for the
// duration of the enclosing WithWriteLock call.
func (w *TableWriter) EntryAt(idx int) *Entry { return &w.t.entries[idx] }

// OwnerID returns the table's owner id.
func (w *TableWriter) OwnerID() RobotID { return w.t.ownerID }

// DecrementActive lowers num_active by one and publishes the delta to
// the global counter. Called by the tick engine when an entry's
// countdown reaches zero.
func (w *TableWriter) DecrementActive() { w.t.adjustActiveLocked(-1) }
