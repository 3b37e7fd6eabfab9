package eventhub

import (
	"sync"
	"testing"
	"time"
)

func awaitTrue(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func registerSync(t *testing.T, hub *EventHub, name string, factory ExtensionFactory) {
	t.Helper()
	done := make(chan RegistrationError, 1)
	hub.RegisterExtension(name, factory, func(e RegistrationError) { done <- e })
	select {
	case err := <-done:
		if err != RegistrationNone {
			t.Fatalf("registering %s: %v", name, err)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out registering %s", name)
	}
}

// S1 - Ordering: two events dispatched to an extension must be observed in
// dispatch order.
func TestEventHubOrdering(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 2)

	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		api.RegisterEventListener("T", "S", func(e Event) {
			mu.Lock()
			seen = append(seen, e.ID())
			mu.Unlock()
			done <- struct{}{}
		})
		return &fakeExtension{name: "A"}, nil
	})
	hub.Start()

	e1 := NewEvent("T", "S", WithData(map[string]any{"i": 1}))
	e2 := NewEvent("T", "S", WithData(map[string]any{"i": 2}))
	hub.Dispatch(e1)
	hub.Dispatch(e2)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != e1.ID() || seen[1] != e2.ID() {
		t.Fatalf("expected [%s %s] in order, got %v", e1.ID(), e2.ID(), seen)
	}
}

// S2 - Shared-state read at event: B reads A's STANDARD state published at
// e1 and sees it SET.
func TestEventHubSharedStateReadAtEvent(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	var aAPI ExtensionApi
	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		aAPI = api
		return &fakeExtension{name: "A"}, nil
	})

	var result *SharedStateResult
	resultCh := make(chan *SharedStateResult, 1)
	registerSync(t, hub, "B", func(api ExtensionApi) (Extension, error) {
		api.RegisterEventListener("T", "S", func(e Event) {
			resultCh <- api.GetSharedState(KindStandard, "A", &e, false, ResolutionAny)
		})
		return &fakeExtension{name: "B"}, nil
	})
	hub.Start()

	e1 := NewEvent("T", "S")
	aAPI.CreateSharedState(KindStandard, map[string]any{"k": "v1"}, &e1)
	hub.Dispatch(e1)

	select {
	case result = <-resultCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for B's read")
	}
	if result.Status != StatusSet || result.Value["k"] != "v1" {
		t.Fatalf("expected SET {k:v1}, got %v %v", result.Status, result.Value)
	}
}

// S3 - Barrier blocks ahead-of-owner reads: while A has not processed past
// e1, a barrier read at e2 downgrades a SET result to PENDING.
func TestEventHubBarrierBlocksAheadOfOwnerReads(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	var aAPI ExtensionApi
	aGate := make(chan struct{})
	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		aAPI = api
		api.RegisterEventListener("T", "S", func(e Event) {
			<-aGate // block A from processing until the test releases it
		})
		return &fakeExtension{name: "A"}, nil
	})

	aAPI.CreateSharedState(KindStandard, map[string]any{"k": "v0"}, nil) // version 0 bootstrap

	aAPI.StopEvents() // A will not process e1 while paused

	var bAPI ExtensionApi
	registerSync(t, hub, "B", func(api ExtensionApi) (Extension, error) {
		bAPI = api
		return &fakeExtension{name: "B"}, nil
	})
	hub.Start()

	e1 := NewEvent("T", "S")
	hub.Dispatch(e1)
	// A is paused: e1 accumulates in A's inbox without being processed.

	aAPI.CreateSharedState(KindStandard, map[string]any{"k": "v1"}, &e1)

	e2 := NewEvent("T", "S")
	hub.Dispatch(e2)
	time.Sleep(50 * time.Millisecond) // let e2 reach the dispatcher/fan-out

	result := bAPI.GetSharedState(KindStandard, "A", &e2, true, ResolutionAny)
	if result.Status != StatusPending {
		t.Fatalf("expected barrier read to downgrade to PENDING while A trails, got %v %v", result.Status, result.Value)
	}

	aAPI.StartEvents()
	close(aGate)

	awaitTrue(t, time.Second, func() bool {
		r := bAPI.GetSharedState(KindStandard, "A", &e2, true, ResolutionAny)
		return r.Status == StatusSet
	})
}

// S4 - Pending resolved: a PENDING read becomes SET once the resolver
// fires, and a second resolver call is ignored.
func TestEventHubPendingSharedStateResolved(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	var aAPI ExtensionApi
	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		aAPI = api
		return &fakeExtension{name: "A"}, nil
	})
	var bAPI ExtensionApi
	registerSync(t, hub, "B", func(api ExtensionApi) (Extension, error) {
		bAPI = api
		return &fakeExtension{name: "B"}, nil
	})
	hub.Start()

	e1 := NewEvent("T", "S")
	resolver := aAPI.CreatePendingSharedState(KindXDM, &e1)

	result := bAPI.GetSharedState(KindXDM, "A", &e1, false, ResolutionAny)
	if result.Status != StatusPending || result.Value != nil {
		t.Fatalf("expected PENDING/nil before resolution, got %v %v", result.Status, result.Value)
	}

	resolver(map[string]any{"x": 1})
	result = bAPI.GetSharedState(KindXDM, "A", &e1, false, ResolutionAny)
	if result.Status != StatusSet || result.Value["x"] != 1 {
		t.Fatalf("expected SET {x:1} after resolution, got %v %v", result.Status, result.Value)
	}

	resolver(map[string]any{"x": 2}) // second call must be a no-op
	result = bAPI.GetSharedState(KindXDM, "A", &e1, false, ResolutionAny)
	if result.Value["x"] != 1 {
		t.Fatalf("expected value to remain {x:1}, got %v", result.Value)
	}
}

// S5 - Response listener timeout: no matching response arrives, Fail(CALLBACK_TIMEOUT)
// fires exactly once.
func TestEventHubResponseListenerTimeout(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	trigger := NewEvent("T", "S")
	failCh := make(chan ResponseFailReason, 1)
	hub.RegisterResponseListener(trigger, 30*time.Millisecond, FuncResponseHandler{
		OnFail: func(r ResponseFailReason) { failCh <- r },
	})
	hub.Dispatch(trigger)

	select {
	case r := <-failCh:
		if r != ReasonCallbackTimeout {
			t.Fatalf("expected ReasonCallbackTimeout, got %v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Fail(CALLBACK_TIMEOUT)")
	}
}

func TestEventHubResponseListenerResolvesOnMatchingResponse(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	trigger := NewEvent("T", "S")
	callCh := make(chan Event, 1)
	hub.RegisterResponseListener(trigger, time.Second, FuncResponseHandler{
		OnCall: func(e Event) { callCh <- e },
	})
	hub.Dispatch(trigger)

	response := NewEvent("T.response", "S", WithResponseID(trigger.ID()))
	hub.Dispatch(response)

	select {
	case e := <-callCh:
		if e.ID() != response.ID() {
			t.Fatalf("expected the matching response event, got %v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Call")
	}
}

// S6 - Readiness non-reordering: while A is not ready for e1, e2 and e3 must
// not be delivered; once A becomes ready, all three arrive in order.
func TestEventHubReadinessNonReordering(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	var readyMu sync.Mutex
	blockedID := ""
	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 3)

	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		api.RegisterEventListener("T", "S", func(e Event) {
			mu.Lock()
			seen = append(seen, e.ID())
			mu.Unlock()
			done <- struct{}{}
		})
		return &fakeExtension{name: "A", ready: func(e Event) bool {
			readyMu.Lock()
			defer readyMu.Unlock()
			return e.ID() != blockedID
		}}, nil
	})
	hub.Start()

	e1 := NewEvent("T", "S")
	readyMu.Lock()
	blockedID = e1.ID()
	readyMu.Unlock()

	e2 := NewEvent("T", "S")
	e3 := NewEvent("T", "S")
	hub.Dispatch(e1)
	hub.Dispatch(e2)
	hub.Dispatch(e3)

	select {
	case <-done:
		t.Fatal("expected no delivery while A is not ready for e1")
	case <-time.After(100 * time.Millisecond):
	}

	readyMu.Lock()
	blockedID = ""
	readyMu.Unlock()
	hub.WakeExtension("A")

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery to resume")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 || seen[0] != e1.ID() || seen[1] != e2.ID() || seen[2] != e3.ID() {
		t.Fatalf("expected [%s %s %s] in order, got %v", e1.ID(), e2.ID(), e3.ID(), seen)
	}
}

func TestEventHubDuplicateExtensionNameRejected(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		return &fakeExtension{name: "A"}, nil
	})

	done := make(chan RegistrationError, 1)
	hub.RegisterExtension("A", func(api ExtensionApi) (Extension, error) {
		return &fakeExtension{name: "A"}, nil
	}, func(e RegistrationError) { done <- e })

	select {
	case err := <-done:
		if err != RegistrationDuplicateExtensionName {
			t.Fatalf("expected RegistrationDuplicateExtensionName, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestEventHubInvalidExtensionNameRejected(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	done := make(chan RegistrationError, 1)
	hub.RegisterExtension("", func(api ExtensionApi) (Extension, error) {
		return &fakeExtension{name: ""}, nil
	}, func(e RegistrationError) { done <- e })

	select {
	case err := <-done:
		if err != RegistrationInvalidExtensionName {
			t.Fatalf("expected RegistrationInvalidExtensionName, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestEventHubUnregisterMissingExtensionReturnsNotRegistered(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	done := make(chan RegistrationError, 1)
	hub.UnregisterExtension("ghost", func(e RegistrationError) { done <- e })

	select {
	case err := <-done:
		if err != RegistrationExtensionNotRegistered {
			t.Fatalf("expected RegistrationExtensionNotRegistered, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestEventHubGetSharedStateUnregisteredExtensionReturnsNil(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	var bAPI ExtensionApi
	registerSync(t, hub, "B", func(api ExtensionApi) (Extension, error) {
		bAPI = api
		return &fakeExtension{name: "B"}, nil
	})

	if result := bAPI.GetSharedState(KindStandard, "ghost", nil, false, ResolutionAny); result != nil {
		t.Fatalf("expected nil for an unregistered extension, got %v", result)
	}
}

func TestEventHubHubSharedStatePublishedOnRegistration(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		return &fakeExtension{name: "A"}, nil
	})

	result := hub.GetHubState()
	if result.Status != StatusSet {
		t.Fatalf("expected hub shared state to be SET after registration, got %v", result.Status)
	}
	extensions, ok := result.Value["extensions"].(map[string]any)
	if !ok || extensions["A"] == nil {
		t.Fatalf("expected hub state to list extension A, got %v", result.Value)
	}
}

// TestEventHubRegisterListener exercises the hub-wide shortcut (§6): a
// handler registered via EventHub.RegisterListener, rather than through an
// extension's ExtensionApi, must still fire on a matching dispatch.
func TestEventHubRegisterListener(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 1)

	hub.RegisterListener("T", "S", func(e Event) {
		mu.Lock()
		seen = append(seen, e.ID())
		mu.Unlock()
		done <- struct{}{}
	})

	e := NewEvent("T", "S", WithData(map[string]any{"i": 1}))
	hub.Dispatch(e)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub-wide listener was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != e.ID() {
		t.Fatalf("expected listener to observe %v, got %v", []string{e.ID()}, seen)
	}
}

// TestEventHubRegisterListener_IgnoresNonMatchingEvents confirms the
// hub-wide shortcut respects its (type, source) filter like any other
// listener.
func TestEventHubRegisterListener_IgnoresNonMatchingEvents(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	called := make(chan struct{}, 1)
	hub.RegisterListener("T", "S", func(Event) { called <- struct{}{} })

	other := NewEvent("OtherType", "OtherSource", WithData(map[string]any{"i": 1}))
	hub.Dispatch(other)

	select {
	case <-called:
		t.Fatal("listener fired for a non-matching event type/source")
	case <-time.After(100 * time.Millisecond):
	}
}
