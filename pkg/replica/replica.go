// Package replica wires the swarmlist entry table, Lamport comparator,
// gossip codec and round-robin scheduler into the per-robot replica
// surface described by the specification: init, control_step, reset,
// force_consensus, set_swarm_mask, and the observation getters.
//
// The Transport and Clock-driver interfaces below are the only contract
// the core has with the outside world. Grounded on the teacher's
// pkg/gossip/transport.go (a doc-comment-only Transport stub) and
// pkg/gossip/gossip.go (a Gossiper lifecycle entry point): the teacher
// left both as stubs, so the shapes here are the fleshed-out version of
// what it sketched.
package replica

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arenafleet/swarmlist/internal/accounting"
	"github.com/arenafleet/swarmlist/pkg/gossip"
	"github.com/arenafleet/swarmlist/pkg/lamport"
	"github.com/arenafleet/swarmlist/pkg/swarmlist"
)

// Transport is the radio/range-and-bearing collaborator the replica
// broadcasts through and receives from. Implementations live outside
// the core (pkg/transport/udp, pkg/transport/simnet).
type Transport interface {
	// Broadcast enqueues a packet for radio broadcast. Its length
	// equals PacketSize().
	Broadcast(packet []byte)
	// OnReceive registers a callback invoked once per delivered packet.
	// Only one callback is supported; a replica registers exactly one,
	// at Init.
	OnReceive(callback func(packet []byte))
	// PacketSize returns the fixed packet size this transport frames.
	PacketSize() int
	// DropProbability returns the transport's configured drop
	// probability, informational only -- the transport applies drops
	// itself.
	DropProbability() float64
}

// Config bundles the replica's immutable startup configuration. It is
// captured once at New and never mutated afterward, per the
// static/global-state redesign note in section 9 of the specification.
type Config struct {
	// TicksToInactive is the time-to-inactive countdown maximum. Must
	// be >= 1.
	TicksToInactive uint32
	// EntriesShouldBecomeInactive gates the aging step of the tick
	// engine. When false, learned entries never age out.
	EntriesShouldBecomeInactive bool
	// LamportThreshold is the circular comparator's acceptance window.
	// Zero means lamport.DefaultThreshold.
	LamportThreshold uint8
	// Global is the process-wide active-entry counter shared across
	// every replica hosted in this process. Nil creates a private one.
	Global *accounting.GlobalActive
}

func (c Config) threshold() uint8 {
	if c.LamportThreshold == 0 {
		return lamport.DefaultThreshold
	}
	return c.LamportThreshold
}

// Replica is one robot's swarmlist: the entry table plus the gossip
// codec and scheduler that keep it converging with the rest of the
// swarm.
type Replica struct {
	ownerID RobotID

	cfg       Config
	table     *swarmlist.Table
	merger    *swarmlist.Merger
	scheduler *gossip.Scheduler
	encoder   *gossip.Encoder
	decoder   *gossip.Decoder

	transport Transport
}

// RobotID is re-exported so callers of this package don't need to
// import pkg/swarmlist just to name an id.
type RobotID = swarmlist.RobotID

// New creates and initializes a replica for ownerID, wiring it to
// transport. This performs the work spec section 6 assigns to init:
// create the owner entry, zero the counters, and register the receive
// callback with the transport.
func New(ownerID RobotID, cfg Config, transport Transport) *Replica {
	if cfg.TicksToInactive == 0 {
		panic("replica: Config.TicksToInactive must be >= 1")
	}

	r := &Replica{ownerID: ownerID, cfg: cfg, transport: transport}
	r.initTable()

	if transport != nil {
		// Dispatch through r so packets keep reaching the current decoder
		// after Reset replaces it.
		transport.OnReceive(func(packet []byte) { r.decoder.Decode(packet) })
	}
	return r
}

func (r *Replica) initTable() {
	r.table = swarmlist.NewTable(r.ownerID, swarmlist.Config{
		TicksToInactive: r.cfg.TicksToInactive,
		AgingEnabled:    r.cfg.EntriesShouldBecomeInactive,
		Global:          r.cfg.Global,
	})
	r.merger = swarmlist.NewMerger(r.table, r.cfg.threshold())
	r.scheduler = gossip.NewScheduler()
	r.encoder = gossip.NewEncoder(r.table, r.scheduler)
	r.decoder = gossip.NewDecoder(r.merger)
}

// Reset clears the table back to owner-only and resets all statistics,
// as if the replica had just been constructed, but keeps the existing
// transport registration.
func (r *Replica) Reset() {
	// Withdraw this replica's entire contribution to the shared global
	// counter before dropping the old table, so a simulator hosting many
	// replicas on one Config.Global handle doesn't leak
	// (oldNumActive - 1) into it every reset. initTable's NewTable call
	// re-applies the fresh owner-only contribution of 1.
	if r.cfg.Global != nil && r.table != nil {
		r.cfg.Global.Apply(-r.table.NumActive())
	}
	r.initTable()
}

// ControlStep runs the tick engine exactly once: ages non-owner entries,
// advances the owner's Lamport clock, and broadcasts the next gossip
// chunk. Must be called exactly once per simulated timestep.
func (r *Replica) ControlStep() {
	r.tick()
	if r.transport != nil {
		packetSize := r.transport.PacketSize()
		packet := r.encoder.EncodeNext(packetSize)
		r.transport.Broadcast(packet)
	}
}

// ForceConsensus ensures one entry per id in existingRobots, resets
// every entry's countdown to the maximum, and randomizes the broadcast
// cursor. Used by test harnesses to measure propagation latency from a
// known-synchronized starting state.
func (r *Replica) ForceConsensus(existingRobots []RobotID) {
	r.table.ForceConsensus(existingRobots)
	r.scheduler.Randomize(r.table.Size())
}

// SetSwarmMask updates the owner's swarm-membership mask. The owner's
// Lamport clock is bumped separately, inside ControlStep, per spec
// section 6.
func (r *Replica) SetSwarmMask(mask uint8) {
	r.table.WithWriteLock(func(w *swarmlist.TableWriter) {
		w.EntryAt(0).SetSwarmMask(mask)
	})
}

// Size returns the total number of entries, active or not.
func (r *Replica) Size() int { return r.table.Size() }

// NumActive returns the number of entries currently considered active.
func (r *Replica) NumActive() int64 { return r.table.NumActive() }

// NumMsgsTx returns the number of gossip packets this replica has sent.
func (r *Replica) NumMsgsTx() uint64 { return r.encoder.NumMsgsTx() }

// NumMsgsRx returns the number of gossip packets this replica has
// received.
func (r *Replica) NumMsgsRx() uint64 { return r.decoder.NumMsgsRx() }

// NumMalformed returns the number of received packets dropped for
// being unparseable.
func (r *Replica) NumMalformed() uint64 { return r.decoder.NumMalformed() }

// HighestTTI returns the highest time-to-inactive observed on any entry
// immediately before an update reset it.
func (r *Replica) HighestTTI() uint32 { return r.table.HighestTTI() }

// AverageTTI returns the mean time-to-inactive observed across every
// update so far.
func (r *Replica) AverageTTI() float64 { return r.table.AverageTTI() }

// Get returns a copy of the entry known for id, or swarmlist.ErrNotFound.
func (r *Replica) Get(id RobotID) (swarmlist.Entry, error) { return r.table.Get(id) }

// SerializeData composes a text dump of every entry, in table order, as
// "id{e}lamport{e}tti{r}id{e}lamport{e}tti{r}...", matching
// original_source's Swarmlist::serializeData.
func (r *Replica) SerializeData(elemDelim, entryDelim byte) string {
	var b strings.Builder
	size := r.table.Size()
	for i := 0; i < size; i++ {
		e := r.table.At(i)
		if i > 0 {
			b.WriteByte(entryDelim)
		}
		b.WriteString(strconv.FormatUint(uint64(e.ID()), 10))
		b.WriteByte(elemDelim)
		b.WriteString(strconv.FormatUint(uint64(e.Lamport()), 10))
		b.WriteByte(elemDelim)
		b.WriteString(strconv.FormatUint(uint64(e.TimeToInactive()), 10))
	}
	return b.String()
}

// String implements fmt.Stringer for convenient logging.
func (r *Replica) String() string {
	return fmt.Sprintf("replica{owner=%d size=%d active=%d}", r.ownerID, r.Size(), r.NumActive())
}
