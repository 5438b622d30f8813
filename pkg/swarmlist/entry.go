// Package swarmlist holds the entry table for a robot's view of the
// swarm: one row per known robot, its swarm-membership mask, a Lamport
// clock, and a time-to-inactive countdown.
package swarmlist

// RobotID identifies a member of the swarm. It is immutable once an
// Entry is created.
type RobotID uint32

// Entry is one row of the swarmlist: what a replica knows about a single
// robot.
type Entry struct {
	id              RobotID
	swarmMask       uint8
	lamport         uint8
	timeToInactive  uint32
}

// NewEntry constructs an Entry with its time-to-inactive counter set to
// ticksToInactive.
func NewEntry(id RobotID, swarmMask uint8, lamport uint8, ticksToInactive uint32) Entry {
	return Entry{
		id:             id,
		swarmMask:      swarmMask,
		lamport:        lamport,
		timeToInactive: ticksToInactive,
	}
}

// ID returns the robot this entry describes.
func (e Entry) ID() RobotID { return e.id }

// SwarmMask returns the entry's swarm-membership payload.
func (e Entry) SwarmMask() uint8 { return e.swarmMask }

// Lamport returns the entry's logical clock.
func (e Entry) Lamport() uint8 { return e.lamport }

// TimeToInactive returns the raw countdown value. Callers that need to
// know whether an entry is reportable as active should use IsActive,
// which special-cases the owner.
func (e Entry) TimeToInactive() uint32 { return e.timeToInactive }

// IsActive reports whether the entry should be considered active. The
// entry whose id equals the owner's id is always active, regardless of
// its countdown.
func (e Entry) IsActive(ownerID RobotID) bool {
	return e.timeToInactive != 0 || e.id == ownerID
}

// ResetTimer sets the time-to-inactive countdown back to its configured
// maximum.
func (e *Entry) ResetTimer(ticksToInactive uint32) {
	e.timeToInactive = ticksToInactive
}

// Tick decrements the countdown by one. It must not be called when the
// countdown is already zero.
func (e *Entry) Tick() {
	if e.timeToInactive == 0 {
		panic("swarmlist: Tick called on an entry with zero time-to-inactive")
	}
	e.timeToInactive--
}

// IncrementLamport advances the entry's Lamport clock by one tick,
// wrapping modulo 256.
func (e *Entry) IncrementLamport() {
	e.lamport++
}

// SetSwarmMask overwrites the entry's swarm-membership payload.
func (e *Entry) SetSwarmMask(mask uint8) {
	e.swarmMask = mask
}

// SetLamport overwrites the entry's Lamport clock directly. Used by
// merge when applying a fresher observation.
func (e *Entry) SetLamport(lamport uint8) {
	e.lamport = lamport
}
