package eventhub

import "testing"

func TestNewEventAssignsIdentityAndTags(t *testing.T) {
	e := NewEvent("com.example.thing", "tester")
	if e.ID() == "" {
		t.Fatal("expected a non-empty generated ID")
	}
	if e.Type() != "com.example.thing" || e.Source() != "tester" {
		t.Fatalf("unexpected type/source: %q/%q", e.Type(), e.Source())
	}
	if e.ResponseID() != "" || e.ParentID() != "" {
		t.Fatal("expected no responseID/parentID by default")
	}
}

func TestEventDataIsClonedNotAliased(t *testing.T) {
	src := map[string]any{"k": "v1"}
	e := NewEvent("t", "s", WithData(src))
	src["k"] = "mutated"

	if got := e.Data()["k"]; got != "v1" {
		t.Fatalf("event data was aliased to caller's map: got %v", got)
	}

	out := e.Data()
	out["k"] = "also mutated"
	if e.Data()["k"] != "v1" {
		t.Fatal("Data() accessor leaked a mutable reference to internal state")
	}
}

func TestEventOptionsSetResponseParentMask(t *testing.T) {
	trigger := NewEvent("t", "s")
	e := NewEvent("response", "s",
		WithResponseID(trigger.ID()),
		WithParentID("parent-1"),
		WithMask("a.b", "c"),
	)
	if e.ResponseID() != trigger.ID() {
		t.Fatalf("expected responseID %q, got %q", trigger.ID(), e.ResponseID())
	}
	if e.ParentID() != "parent-1" {
		t.Fatalf("expected parentID parent-1, got %q", e.ParentID())
	}
	mask := e.Mask()
	if len(mask) != 2 || mask[0] != "a.b" || mask[1] != "c" {
		t.Fatalf("unexpected mask: %v", mask)
	}
}

func TestEventMaskIsClonedNotAliased(t *testing.T) {
	e := NewEvent("t", "s", WithMask("a", "b"))
	m := e.Mask()
	m[0] = "mutated"
	if e.Mask()[0] != "a" {
		t.Fatal("Mask() accessor leaked a mutable reference to internal state")
	}
}

func TestWithDataNilLeavesDataNil(t *testing.T) {
	e := NewEvent("t", "s", WithData(nil))
	if e.Data() != nil {
		t.Fatalf("expected nil data, got %v", e.Data())
	}
}
