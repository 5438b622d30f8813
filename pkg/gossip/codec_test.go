package gossip

import (
	"testing"

	"github.com/arenafleet/swarmlist/pkg/swarmlist"
)

func TestEncoderCountsPacketsAndWraps(t *testing.T) {
	tbl := swarmlist.NewTable(1, swarmlist.Config{TicksToInactive: 100, AgingEnabled: true})
	tbl.Update(2, 0x01, 1)
	tbl.Update(3, 0x02, 1)
	tbl.Update(4, 0x03, 1)

	sched := NewScheduler()
	enc := NewEncoder(tbl, sched)

	packetSize := HeaderSize + 2*EntrySize // N=2, table has 4 entries
	packetA := enc.EncodeNext(packetSize)
	packetB := enc.EncodeNext(packetSize)

	if enc.NumMsgsTx() != 2 {
		t.Fatalf("NumMsgsTx() = %d, want 2", enc.NumMsgsTx())
	}

	entriesA, err := Decode(packetA)
	if err != nil {
		t.Fatalf("Decode(packetA) error: %v", err)
	}
	entriesB, err := Decode(packetB)
	if err != nil {
		t.Fatalf("Decode(packetB) error: %v", err)
	}
	if len(entriesA) != 2 || len(entriesB) != 2 {
		t.Fatalf("expected 2 entries per packet, got %d and %d", len(entriesA), len(entriesB))
	}

	seen := map[swarmlist.RobotID]bool{}
	for _, e := range append(entriesA, entriesB...) {
		seen[e.ID] = true
	}
	if len(seen) != 4 {
		t.Fatalf("round-robin across two packets should cover all 4 entries, saw %v", seen)
	}
}

func TestDecoderMergesAndCountsPackets(t *testing.T) {
	tbl := swarmlist.NewTable(1, swarmlist.Config{TicksToInactive: 100, AgingEnabled: true})
	merger := swarmlist.NewMerger(tbl, 50)
	dec := NewDecoder(merger)

	packet := Encode([]WireEntry{{ID: 2, SwarmMask: 0x07, Lamport: 5}}, HeaderSize+EntrySize)
	dec.Decode(packet)

	if dec.NumMsgsRx() != 1 {
		t.Fatalf("NumMsgsRx() = %d, want 1", dec.NumMsgsRx())
	}
	e2, err := tbl.Get(2)
	if err != nil {
		t.Fatalf("Get(2) error: %v", err)
	}
	if e2.SwarmMask() != 0x07 || e2.Lamport() != 5 {
		t.Fatalf("Get(2) = %+v, want mask=0x07 lamport=5", e2)
	}
}

func TestDecoderCountsMalformedPackets(t *testing.T) {
	tbl := swarmlist.NewTable(1, swarmlist.Config{TicksToInactive: 100, AgingEnabled: true})
	merger := swarmlist.NewMerger(tbl, 50)
	dec := NewDecoder(merger)

	dec.Decode([]byte{9}) // claims 9 entries, has none

	if dec.NumMalformed() != 1 {
		t.Fatalf("NumMalformed() = %d, want 1", dec.NumMalformed())
	}
	if dec.NumMsgsRx() != 1 {
		t.Fatalf("NumMsgsRx() = %d, want 1 (still counted as received)", dec.NumMsgsRx())
	}
	if tbl.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 (malformed packet must not mutate the table)", tbl.Size())
	}
}
