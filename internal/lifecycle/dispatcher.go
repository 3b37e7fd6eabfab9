package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrDispatcherNotRunning     = errors.New("lifecycle: dispatcher is not running")
	ErrDispatcherAlreadyRunning = errors.New("lifecycle: dispatcher is already running")
	ErrTransitionBufferFull     = errors.New("lifecycle: transition buffer full, dropping transition")
	ErrTransitionNotFound       = errors.New("lifecycle: transition not found")
)

// dispatcher is a Dispatcher backed by an in-process buffered channel: one
// goroutine drains the buffer and fans each Transition out to every
// Observer registered for its EventType, highest Priority first. A panic
// or slow call from one Observer never blocks or breaks delivery to the
// others — each call runs under its own recover and ObserverTimeout.
type dispatcher struct {
	mu        sync.RWMutex
	observers map[string]Observer
	running   bool
	cfg       DispatchConfig
	store     Store
	ch        chan Transition
	stop      chan struct{}
	done      chan struct{}
}

// NewDispatcher builds a Dispatcher that persists every transition to store
// before fanning it out to observers.
func NewDispatcher(cfg DispatchConfig, store Store) Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.ObserverTimeout <= 0 {
		cfg.ObserverTimeout = 5 * time.Second
	}
	return &dispatcher{
		observers: make(map[string]Observer),
		cfg:       cfg,
		store:     store,
		ch:        make(chan Transition, cfg.BufferSize),
	}
}

func (d *dispatcher) Dispatch(_ context.Context, t Transition) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		return ErrDispatcherNotRunning
	}
	select {
	case d.ch <- t:
		return nil
	default:
		return ErrTransitionBufferFull
	}
}

func (d *dispatcher) RegisterObserver(_ context.Context, observer Observer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers[observer.ID()] = observer
	return nil
}

func (d *dispatcher) UnregisterObserver(_ context.Context, observerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.observers, observerID)
	return nil
}

func (d *dispatcher) GetObservers(_ context.Context) ([]Observer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Observer, 0, len(d.observers))
	for _, o := range d.observers {
		out = append(out, o)
	}
	return out, nil
}

func (d *dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrDispatcherAlreadyRunning
	}
	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.mu.Unlock()

	go d.run(ctx)
	return nil
}

func (d *dispatcher) Stop(_ context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stop)
	d.mu.Unlock()

	<-d.done
	return nil
}

func (d *dispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

func (d *dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case t := <-d.ch:
			d.deliver(ctx, t)
		case <-d.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (d *dispatcher) deliver(ctx context.Context, t Transition) {
	if d.store != nil {
		if err := d.store.Store(ctx, t); err != nil {
			return
		}
	}

	d.mu.RLock()
	matching := make([]Observer, 0, len(d.observers))
	for _, o := range d.observers {
		if wantsEventType(o.EventTypes(), t.Type) {
			matching = append(matching, o)
		}
	}
	d.mu.RUnlock()

	sort.Slice(matching, func(i, j int) bool { return matching[i].Priority() > matching[j].Priority() })

	for _, o := range matching {
		d.safeNotify(ctx, o, t)
	}
}

func (d *dispatcher) safeNotify(ctx context.Context, o Observer, t Transition) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { _ = recover() }()
		_ = o.OnTransition(ctx, t)
	}()

	select {
	case <-done:
	case <-time.After(d.cfg.ObserverTimeout):
	}
}

func wantsEventType(want []EventType, got EventType) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if w == got {
			return true
		}
	}
	return false
}

// memoryStore is the default Store: an append-only slice plus a
// per-extension map-of-slices index.
type memoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Transition
	byExt   map[string][]Transition
	ordered []Transition
}

// NewMemoryStore builds an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{
		byID:  make(map[string]Transition),
		byExt: make(map[string][]Transition),
	}
}

func (s *memoryStore) Store(_ context.Context, t Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[t.ID] = t
	s.byExt[t.ExtensionName] = append(s.byExt[t.ExtensionName], t)
	s.ordered = append(s.ordered, t)
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return Transition{}, ErrTransitionNotFound
	}
	return t, nil
}

func (s *memoryStore) Query(_ context.Context, criteria QueryCriteria) ([]Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Transition
	for _, t := range s.ordered {
		if !matchesCriteria(t, criteria) {
			continue
		}
		out = append(out, t)
		if criteria.Limit > 0 && len(out) >= criteria.Limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) GetHistory(_ context.Context, extensionName string, since time.Time) ([]Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Transition
	for _, t := range s.byExt[extensionName] {
		if t.Timestamp.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func matchesCriteria(t Transition, c QueryCriteria) bool {
	if len(c.EventTypes) > 0 && !wantsEventType(c.EventTypes, t.Type) {
		return false
	}
	if len(c.ExtensionNames) > 0 {
		found := false
		for _, n := range c.ExtensionNames {
			if n == t.ExtensionName {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.Since != nil && t.Timestamp.Before(*c.Since) {
		return false
	}
	if c.Until != nil && t.Timestamp.After(*c.Until) {
		return false
	}
	return true
}

// FuncObserver adapts a plain callback to Observer, for tests and simple
// integrations.
type FuncObserver struct {
	id         string
	eventTypes []EventType
	priority   int
	callback   func(context.Context, Transition) error
}

// NewFuncObserver builds a FuncObserver.
func NewFuncObserver(id string, eventTypes []EventType, priority int, callback func(context.Context, Transition) error) *FuncObserver {
	return &FuncObserver{id: id, eventTypes: eventTypes, priority: priority, callback: callback}
}

func (o *FuncObserver) OnTransition(ctx context.Context, t Transition) error {
	if o.callback == nil {
		return nil
	}
	if err := o.callback(ctx, t); err != nil {
		return fmt.Errorf("lifecycle observer %s: %w", o.id, err)
	}
	return nil
}

func (o *FuncObserver) ID() string             { return o.id }
func (o *FuncObserver) EventTypes() []EventType { return o.eventTypes }
func (o *FuncObserver) Priority() int           { return o.priority }
