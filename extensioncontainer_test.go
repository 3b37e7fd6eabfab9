package eventhub

import (
	"sync"
	"testing"
	"time"
)

// fakeExtension is a minimal Extension used across container/hub tests.
type fakeExtension struct {
	name  string
	ready func(Event) bool
}

func (f *fakeExtension) Name() string                { return f.name }
func (f *fakeExtension) FriendlyName() string         { return f.name }
func (f *fakeExtension) Version() string              { return "1.0.0" }
func (f *fakeExtension) Metadata() map[string]string  { return nil }
func (f *fakeExtension) OnExtensionRegistered()       {}
func (f *fakeExtension) OnExtensionUnregistered()     {}
func (f *fakeExtension) ReadyForEvent(e Event) bool {
	if f.ready == nil {
		return true
	}
	return f.ready(e)
}

func TestExtensionContainerDeliversListenersInOrder(t *testing.T) {
	ext := &fakeExtension{name: "A"}
	c := newExtensionContainer("A", nil, noopLogger{})
	c.start(ext)
	defer c.shutdown()

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 2)
	c.registerListener("T", "S", func(e Event) {
		mu.Lock()
		seen = append(seen, e.ID())
		mu.Unlock()
		done <- struct{}{}
	})

	e1 := NewEvent("T", "S")
	e2 := NewEvent("T", "S")
	c.enqueue(numberedEvent{event: e1, number: 1})
	c.enqueue(numberedEvent{event: e2, number: 2})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for listener delivery")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != e1.ID() || seen[1] != e2.ID() {
		t.Fatalf("expected [%s %s], got %v", e1.ID(), e2.ID(), seen)
	}
}

func TestExtensionContainerRegisterListenerIsIdempotentOnExactTriple(t *testing.T) {
	c := newExtensionContainer("A", nil, noopLogger{})
	c.start(&fakeExtension{name: "A"})
	defer c.shutdown()

	var count int
	var mu sync.Mutex
	handler := func(Event) { mu.Lock(); count++; mu.Unlock() }
	c.registerListener("T", "S", handler)
	c.registerListener("T", "S", handler)

	if len(c.listeners) != 1 {
		t.Fatalf("expected exactly one listener entry, got %d", len(c.listeners))
	}
}

func TestExtensionContainerNotReadyBlocksLaterEvents(t *testing.T) {
	var readyMu sync.Mutex
	ready := false
	ext := &fakeExtension{name: "A", ready: func(Event) bool {
		readyMu.Lock()
		defer readyMu.Unlock()
		return ready
	}}
	c := newExtensionContainer("A", nil, noopLogger{})
	c.start(ext)
	defer c.shutdown()

	var mu sync.Mutex
	var delivered []int64
	done := make(chan struct{}, 3)
	c.registerListener("*", "*", func(e Event) {
		mu.Lock()
		delivered = append(delivered, 0)
		mu.Unlock()
		done <- struct{}{}
	})

	e1 := NewEvent("T", "S")
	e2 := NewEvent("T", "S")
	e3 := NewEvent("T", "S")
	c.enqueue(numberedEvent{event: e1, number: 1})
	c.enqueue(numberedEvent{event: e2, number: 2})
	c.enqueue(numberedEvent{event: e3, number: 3})

	// While not ready, nothing should be delivered despite later events
	// having arrived.
	select {
	case <-done:
		t.Fatal("expected no delivery while extension reports not ready")
	case <-time.After(100 * time.Millisecond):
	}

	readyMu.Lock()
	ready = true
	readyMu.Unlock()
	c.wake()

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery to resume")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 3 {
		t.Fatalf("expected all 3 events eventually delivered, got %d", len(delivered))
	}
}

func TestExtensionContainerSetPausedHaltsDelivery(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	c := newExtensionContainer("A", hub, noopLogger{})
	c.start(&fakeExtension{name: "A"})
	defer c.shutdown()

	done := make(chan struct{}, 1)
	c.registerListener("*", "*", func(Event) { done <- struct{}{} })

	c.setPaused(true)
	c.enqueue(numberedEvent{event: NewEvent("T", "S"), number: 1})

	select {
	case <-done:
		t.Fatal("expected no delivery while paused")
	case <-time.After(100 * time.Millisecond):
	}

	c.setPaused(false)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery after resume")
	}
}

func TestExtensionContainerListenerPanicDoesNotStopTheLoop(t *testing.T) {
	c := newExtensionContainer("A", nil, noopLogger{})
	c.start(&fakeExtension{name: "A"})
	defer c.shutdown()

	done := make(chan struct{}, 1)
	c.registerListener("T", "panics", func(Event) { panic("boom") })
	c.registerListener("T", "ok", func(Event) { done <- struct{}{} })

	c.enqueue(numberedEvent{event: NewEvent("T", "panics"), number: 1})
	c.enqueue(numberedEvent{event: NewEvent("T", "ok"), number: 2})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out: a panicking listener should not block later delivery")
	}
}

func TestListenerEntryMatchRule(t *testing.T) {
	l := ListenerEntry{EventType: "T", Source: "*"}
	if !l.matches(NewEvent("t", "anything")) {
		t.Fatal("expected case-insensitive type match with wildcard source to match")
	}
	if l.matches(NewEvent("other", "anything")) {
		t.Fatal("expected non-matching type to fail")
	}

	wildcard := ListenerEntry{EventType: "*", Source: "*"}
	if !wildcard.matches(NewEvent("anything", "anything")) {
		t.Fatal("expected full wildcard to match everything")
	}
}
