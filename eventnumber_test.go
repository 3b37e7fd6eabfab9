package eventhub

import "testing"

func TestEventNumberRegistryAssignIsMonotone(t *testing.T) {
	r := newEventNumberRegistry()
	n1 := r.assign("e1")
	n2 := r.assign("e2")
	n3 := r.assign("e3")
	if !(n1 < n2 && n2 < n3) {
		t.Fatalf("expected strictly increasing numbers, got %d, %d, %d", n1, n2, n3)
	}
}

func TestEventNumberRegistryNumberOfLooksUpAssignedNumber(t *testing.T) {
	r := newEventNumberRegistry()
	n := r.assign("e1")
	got, ok := r.numberOf("e1")
	if !ok || got != n {
		t.Fatalf("expected numberOf to return (%d, true), got (%d, %v)", n, got, ok)
	}
	if _, ok := r.numberOf("unknown"); ok {
		t.Fatal("expected numberOf for an unassigned ID to report not found")
	}
}

func TestEventNumberRegistryNextTickAdvancesWithoutAssigningID(t *testing.T) {
	r := newEventNumberRegistry()
	n1 := r.assign("e1")
	tick := r.nextTick()
	n2 := r.assign("e2")
	if !(n1 < tick && tick < n2) {
		t.Fatalf("expected nextTick to occupy one logical slot between assigns, got %d, %d, %d", n1, tick, n2)
	}
	if r.current() != n2 {
		t.Fatalf("expected current() to reflect the latest assignment, got %d want %d", r.current(), n2)
	}
}

func TestEventNumberRegistryEvictDropsLookup(t *testing.T) {
	r := newEventNumberRegistry()
	r.assign("e1")
	r.evict("e1")
	if _, ok := r.numberOf("e1"); ok {
		t.Fatal("expected evicted ID to no longer resolve")
	}
}
