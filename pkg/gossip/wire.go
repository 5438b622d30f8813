package gossip

import (
	"encoding/binary"
	"fmt"

	"github.com/arenafleet/swarmlist/pkg/swarmlist"
)

// Wire layout for one swarmlist entry inside a gossip packet. Offsets and
// width are fixed at startup and never renegotiated with a peer.
const (
	RobotIDPos   = 0
	SwarmMaskPos = 4
	LamportPos   = 5

	// EntrySize is the number of bytes one entry occupies on the wire:
	// a 4-byte little-endian robot id, a 1-byte swarm mask, a 1-byte
	// Lamport clock.
	EntrySize = 6

	// HeaderSize is the one-byte entry count prefixed to every packet.
	// This resolves the padding-vs-real-entry ambiguity from the
	// original fixed-layout design (see SPEC_FULL.md section 4.E):
	// trailing slots are zero-filled but never need to be told apart
	// from a real entry whose id happens to be zero, because the
	// header says exactly how many of the slots are real.
	HeaderSize = 1
)

// ErrMalformedPacket marks a packet that could not be parsed: truncated
// below the header, or a count header claiming more entries than the
// packet has room for.
var ErrMalformedPacket = fmt.Errorf("gossip: malformed packet")

// NumEntriesPerPacket returns how many entries fit in a packet of
// packetSize bytes after the header, i.e. N = floor((P - header) / ENTRY_SIZE).
func NumEntriesPerPacket(packetSize int) int {
	avail := packetSize - HeaderSize
	if avail <= 0 {
		return 0
	}
	return avail / EntrySize
}

// WireEntry is the decoded form of one on-wire entry, independent of
// the swarmlist package's internal Entry representation.
type WireEntry struct {
	ID        swarmlist.RobotID
	SwarmMask uint8
	Lamport   uint8
}

// Encode writes up to N entries (N = NumEntriesPerPacket(packetSize))
// into a packet of exactly packetSize bytes: a one-byte count header
// followed by that many fixed-width entries, with any remaining slots
// zero-filled.
func Encode(entries []WireEntry, packetSize int) []byte {
	packet := make([]byte, packetSize)
	n := NumEntriesPerPacket(packetSize)
	if len(entries) > n {
		entries = entries[:n]
	}
	packet[0] = uint8(len(entries))
	for i, e := range entries {
		off := HeaderSize + i*EntrySize
		binary.LittleEndian.PutUint32(packet[off+RobotIDPos:], uint32(e.ID))
		packet[off+SwarmMaskPos] = e.SwarmMask
		packet[off+LamportPos] = e.Lamport
	}
	return packet
}

// Decode parses a received packet into its real (non-padding) entries.
// It returns ErrMalformedPacket if the packet is too short for its own
// header, or if the header claims more entries than fit in the
// remaining bytes.
func Decode(packet []byte) ([]WireEntry, error) {
	if len(packet) < HeaderSize {
		return nil, ErrMalformedPacket
	}
	count := int(packet[0])
	need := HeaderSize + count*EntrySize
	if need > len(packet) {
		return nil, ErrMalformedPacket
	}

	out := make([]WireEntry, count)
	for i := 0; i < count; i++ {
		off := HeaderSize + i*EntrySize
		out[i] = WireEntry{
			ID:        swarmlist.RobotID(binary.LittleEndian.Uint32(packet[off+RobotIDPos:])),
			SwarmMask: packet[off+SwarmMaskPos],
			Lamport:   packet[off+LamportPos],
		}
	}
	return out, nil
}
