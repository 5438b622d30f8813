package gossip

import (
	"sync/atomic"

	"github.com/arenafleet/swarmlist/pkg/swarmlist"
)

// Encoder snapshots entries from a table in round-robin order and
// serializes them into fixed-size packets, counting how many packets it
// has emitted since the beginning of the experiment.
type Encoder struct {
	table     *swarmlist.Table
	scheduler *Scheduler
	numMsgsTx uint64
}

// NewEncoder builds an Encoder over table, broadcasting via scheduler.
func NewEncoder(table *swarmlist.Table, scheduler *Scheduler) *Encoder {
	return &Encoder{table: table, scheduler: scheduler}
}

// EncodeNext builds the next packet of packetSize bytes, wrapping
// cyclically through the table. Each encoded entry is a snapshot taken
// at encode time.
func (enc *Encoder) EncodeNext(packetSize int) []byte {
	n := NumEntriesPerPacket(packetSize)
	size := enc.table.Size()

	entries := make([]WireEntry, 0, n)
	for i := 0; i < n && i < size; i++ {
		idx := enc.scheduler.NextIndex(size)
		e := enc.table.At(idx)
		entries = append(entries, WireEntry{ID: e.ID(), SwarmMask: e.SwarmMask(), Lamport: e.Lamport()})
	}

	atomic.AddUint64(&enc.numMsgsTx, 1)
	return Encode(entries, packetSize)
}

// NumMsgsTx returns the number of packets emitted so far.
func (enc *Encoder) NumMsgsTx() uint64 {
	return atomic.LoadUint64(&enc.numMsgsTx)
}

// Decoder parses incoming packets and folds their entries into a table
// via a Merger, counting received packets and malformed ones.
type Decoder struct {
	merger       *swarmlist.Merger
	numMsgsRx    uint64
	numMalformed uint64
}

// NewDecoder builds a Decoder that merges into the table behind merger.
func NewDecoder(merger *swarmlist.Merger) *Decoder {
	return &Decoder{merger: merger}
}

// Decode parses packet and merges every real entry it contains. A
// malformed packet is dropped and counted, never surfaced as an error
// to the caller: gossip delivery is best-effort.
func (d *Decoder) Decode(packet []byte) {
	atomic.AddUint64(&d.numMsgsRx, 1)

	entries, err := Decode(packet)
	if err != nil {
		atomic.AddUint64(&d.numMalformed, 1)
		return
	}
	for _, e := range entries {
		d.merger.Merge(e.ID, e.SwarmMask, e.Lamport)
	}
}

// NumMsgsRx returns the number of packets received so far.
func (d *Decoder) NumMsgsRx() uint64 {
	return atomic.LoadUint64(&d.numMsgsRx)
}

// NumMalformed returns the number of packets dropped for being
// unparseable.
func (d *Decoder) NumMalformed() uint64 {
	return atomic.LoadUint64(&d.numMalformed)
}
