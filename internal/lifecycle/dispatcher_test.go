package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToMatchingObserversInPriorityOrder(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(DispatchConfig{}, store)
	require.NoError(t, d.Start(context.Background()))
	defer func() { _ = d.Stop(context.Background()) }()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{}, 2)

	low := NewFuncObserver("low", []EventType{EventTypeExtensionStarted}, 1, func(_ context.Context, _ Transition) error {
		mu.Lock()
		order = append(order, "low")
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	high := NewFuncObserver("high", []EventType{EventTypeExtensionStarted}, 10, func(_ context.Context, _ Transition) error {
		mu.Lock()
		order = append(order, "high")
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	require.NoError(t, d.RegisterObserver(context.Background(), low))
	require.NoError(t, d.RegisterObserver(context.Background(), high))

	require.NoError(t, d.Dispatch(context.Background(), Transition{
		ID: "t1", Type: EventTypeExtensionStarted, ExtensionName: "weather",
		Timestamp: time.Now(), Phase: PhaseRunning, Status: StatusStarted,
	}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for observer delivery")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 2)
	assert.Equal(t, "high", order[0])
	assert.Equal(t, "low", order[1])
}

func TestDispatcherIgnoresNonMatchingEventTypes(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(DispatchConfig{}, store)
	require.NoError(t, d.Start(context.Background()))
	defer func() { _ = d.Stop(context.Background()) }()

	called := make(chan struct{}, 1)
	obs := NewFuncObserver("only-failed", []EventType{EventTypeExtensionFailed}, 0, func(_ context.Context, _ Transition) error {
		called <- struct{}{}
		return nil
	})
	require.NoError(t, d.RegisterObserver(context.Background(), obs))

	require.NoError(t, d.Dispatch(context.Background(), Transition{
		ID: "t1", Type: EventTypeExtensionStarted, ExtensionName: "weather", Timestamp: time.Now(),
	}))

	select {
	case <-called:
		t.Fatal("observer should not have been notified for a non-matching event type")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherRejectsDispatchBeforeStart(t *testing.T) {
	d := NewDispatcher(DispatchConfig{}, NewMemoryStore())
	err := d.Dispatch(context.Background(), Transition{ID: "t1", Type: EventTypeHubStarting})
	assert.ErrorIs(t, err, ErrDispatcherNotRunning)
}

func TestDispatcherObserverPanicDoesNotBreakDelivery(t *testing.T) {
	store := NewMemoryStore()
	d := NewDispatcher(DispatchConfig{}, store)
	require.NoError(t, d.Start(context.Background()))
	defer func() { _ = d.Stop(context.Background()) }()

	done := make(chan struct{}, 1)
	panicker := NewFuncObserver("panicker", nil, 5, func(_ context.Context, _ Transition) error {
		panic("boom")
	})
	ok := NewFuncObserver("ok", nil, 0, func(_ context.Context, _ Transition) error {
		done <- struct{}{}
		return nil
	})
	require.NoError(t, d.RegisterObserver(context.Background(), panicker))
	require.NoError(t, d.RegisterObserver(context.Background(), ok))

	require.NoError(t, d.Dispatch(context.Background(), Transition{ID: "t1", Type: EventTypeHubStarting, Timestamp: time.Now()}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicking observer should not have prevented delivery to the other observer")
	}
}

func TestMemoryStoreQueryFiltersByCriteria(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	require.NoError(t, store.Store(context.Background(), Transition{
		ID: "a", Type: EventTypeExtensionStarted, ExtensionName: "weather", Timestamp: now,
	}))
	require.NoError(t, store.Store(context.Background(), Transition{
		ID: "b", Type: EventTypeExtensionFailed, ExtensionName: "location", Timestamp: now.Add(time.Second),
	}))

	results, err := store.Query(context.Background(), QueryCriteria{EventTypes: []EventType{EventTypeExtensionFailed}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)

	history, err := store.GetHistory(context.Background(), "weather", now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a", history[0].ID)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTransitionNotFound)
}
