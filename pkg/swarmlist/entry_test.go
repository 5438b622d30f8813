package swarmlist

import "testing"

func TestEntryIsActive(t *testing.T) {
	e := NewEntry(2, 0x07, 5, 100)
	if !e.IsActive(1) {
		t.Fatalf("fresh entry should be active")
	}

	for e.TimeToInactive() > 0 {
		e.Tick()
	}
	if e.IsActive(1) {
		t.Fatalf("entry with tti=0 should not be active for a non-owner id")
	}
	if !e.IsActive(2) {
		t.Fatalf("entry with tti=0 should still be active when it is the owner's own entry")
	}
}

func TestEntryTickPanicsAtZero(t *testing.T) {
	e := NewEntry(2, 0, 0, 1)
	e.Tick()
	if e.TimeToInactive() != 0 {
		t.Fatalf("tti = %d, want 0", e.TimeToInactive())
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Tick on a zero tti entry to panic")
		}
	}()
	e.Tick()
}

func TestEntryIncrementLamportWraps(t *testing.T) {
	e := NewEntry(1, 0, 255, 100)
	e.IncrementLamport()
	if e.Lamport() != 0 {
		t.Fatalf("lamport after wrap = %d, want 0", e.Lamport())
	}
}

func TestEntryResetTimer(t *testing.T) {
	e := NewEntry(2, 0, 0, 100)
	for e.TimeToInactive() > 0 {
		e.Tick()
	}
	e.ResetTimer(100)
	if e.TimeToInactive() != 100 {
		t.Fatalf("tti after reset = %d, want 100", e.TimeToInactive())
	}
}
