package gossip

import (
	"testing"

	"github.com/arenafleet/swarmlist/pkg/swarmlist"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Invariant 6: encode then decode on a packet containing K entries
	// yields K merge-ready tuples equal to the originals, for
	// non-padding slots.
	in := []WireEntry{
		{ID: 2, SwarmMask: 0x07, Lamport: 5},
		{ID: 3, SwarmMask: 0x00, Lamport: 1},
	}
	packetSize := HeaderSize + 4*EntrySize // room for more than len(in)

	packet := Encode(in, packetSize)
	if len(packet) != packetSize {
		t.Fatalf("Encode produced %d bytes, want %d", len(packet), packetSize)
	}

	out, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("Decode returned %d entries, want %d (padding slots must not appear)", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestEncodeTruncatesToCapacity(t *testing.T) {
	packetSize := HeaderSize + EntrySize // room for exactly one entry
	in := []WireEntry{
		{ID: 1, SwarmMask: 0, Lamport: 0},
		{ID: 2, SwarmMask: 0, Lamport: 0},
	}
	packet := Encode(in, packetSize)
	out, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Decode returned %d entries, want 1", len(out))
	}
	if out[0].ID != 1 {
		t.Fatalf("Decode()[0].ID = %d, want 1", out[0].ID)
	}
}

func TestDecodeAcceptsIdZeroViaCountHeader(t *testing.T) {
	// A real entry with robot id 0 must round-trip, distinguished from
	// padding solely by the count header (the resolved open question
	// in SPEC_FULL.md section 4.E).
	in := []WireEntry{{ID: 0, SwarmMask: 0x01, Lamport: 1}}
	packetSize := HeaderSize + 3*EntrySize

	packet := Encode(in, packetSize)
	out, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(out) != 1 || out[0].ID != 0 {
		t.Fatalf("Decode() = %+v, want one entry with id 0", out)
	}
}

func TestDecodeMalformedTruncatedHeader(t *testing.T) {
	if _, err := Decode(nil); err != ErrMalformedPacket {
		t.Fatalf("Decode(nil) error = %v, want ErrMalformedPacket", err)
	}
}

func TestDecodeMalformedCountExceedsBuffer(t *testing.T) {
	packet := []byte{5} // claims 5 entries, has 0 bytes for them
	if _, err := Decode(packet); err != ErrMalformedPacket {
		t.Fatalf("Decode() error = %v, want ErrMalformedPacket", err)
	}
}

func TestNumEntriesPerPacket(t *testing.T) {
	if got := NumEntriesPerPacket(HeaderSize + 2*EntrySize); got != 2 {
		t.Fatalf("NumEntriesPerPacket = %d, want 2", got)
	}
	if got := NumEntriesPerPacket(0); got != 0 {
		t.Fatalf("NumEntriesPerPacket(0) = %d, want 0", got)
	}
}

func TestWireEntryUsesSwarmlistRobotID(t *testing.T) {
	var id swarmlist.RobotID = 7
	e := WireEntry{ID: id}
	if e.ID != 7 {
		t.Fatalf("WireEntry.ID = %d, want 7", e.ID)
	}
}
