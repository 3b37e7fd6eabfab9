// Package eventhub's observer surface provides CloudEvents-based external
// notification, independent of the internal per-extension event fan-out.
// It is how a host application watches hub-level occurrences (extension
// registered/unregistered, shared state changed) without installing a
// listener inside the hub's own ordering domain.
package eventhub

import (
	"context"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer receives CloudEvents notifications from a Subject.
type Observer interface {
	// OnEvent is called when a matching event occurs. Implementations
	// should return quickly; OnEvent is invoked synchronously by the
	// notifying domain's writer and must not block on hub calls.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier used for registration tracking.
	ObserverID() string
}

// Subject is implemented by anything that can be observed.
type Subject interface {
	RegisterObserver(observer Observer, eventTypes ...string) error
	UnregisterObserver(observer Observer) error
	NotifyObservers(ctx context.Context, event cloudevents.Event) error
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer for debugging/introspection.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Hub-level CloudEvent type vocabulary, reverse-domain notation.
const (
	EventTypeExtensionRegistered   = "com.eventhub.extension.registered"
	EventTypeExtensionInitialized  = "com.eventhub.extension.initialized"
	EventTypeExtensionUnregistered = "com.eventhub.extension.unregistered"
	EventTypeExtensionFailed       = "com.eventhub.extension.failed"

	EventTypeSharedStateChanged     = "com.eventhub.sharedstate.changed"
	EventTypeSharedStateXDMChanged  = "com.eventhub.sharedstate.xdm.changed"
	EventTypeHubSharedStateChanged  = "com.eventhub.hub.sharedstate.changed"

	EventTypeHubStarted  = "com.eventhub.hub.started"
	EventTypeHubShutdown = "com.eventhub.hub.shutdown"
)

// ObservableExtension is an optional interface extensions can implement to
// participate in the CloudEvents observer pattern, separate from the
// per-event listener table.
type ObservableExtension interface {
	Extension

	// RegisterObservers lets the extension subscribe to hub-level events
	// during initialization.
	RegisterObservers(subject Subject) error

	// EmitEvent lets the extension publish its own CloudEvents, typically
	// by delegating to the hub's NotifyObservers.
	EmitEvent(ctx context.Context, event cloudevents.Event) error
}

// observerRegistration pairs an observer with its event-type filter.
type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]struct{} // empty means "all events"
	registeredAt time.Time
}

// subjectImpl is the concrete Subject backing the hub.
type subjectImpl struct {
	mu        sync.RWMutex
	observers map[string]*observerRegistration
	logger    Logger
}

func newSubject(logger Logger) *subjectImpl {
	return &subjectImpl{
		observers: make(map[string]*observerRegistration),
		logger:    logger,
	}
}

func (s *subjectImpl) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrExtensionNil
	}
	filter := make(map[string]struct{}, len(eventTypes))
	for _, t := range eventTypes {
		filter[t] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   filter,
		registeredAt: time.Now(),
	}
	return nil
}

func (s *subjectImpl) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrExtensionNil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, observer.ObserverID())
	return nil
}

// NotifyObservers fans the event out to every registered observer whose
// filter matches (or who filters nothing). Observer errors are logged and
// swallowed — notification must never fail the caller's writer domain.
func (s *subjectImpl) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	s.mu.RLock()
	regs := make([]*observerRegistration, 0, len(s.observers))
	for _, r := range s.observers {
		regs = append(regs, r)
	}
	s.mu.RUnlock()

	for _, r := range regs {
		if len(r.eventTypes) > 0 {
			if _, ok := r.eventTypes[event.Type()]; !ok {
				continue
			}
		}
		if err := r.observer.OnEvent(ctx, event); err != nil {
			s.logger.Warn("observer failed handling event", "observer", r.observer.ObserverID(), "eventType", event.Type(), "error", err)
		}
	}
	return nil
}

func (s *subjectImpl) GetObservers() []ObserverInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ObserverInfo, 0, len(s.observers))
	for id, r := range s.observers {
		types := make([]string, 0, len(r.eventTypes))
		for t := range r.eventTypes {
			types = append(types, t)
		}
		out = append(out, ObserverInfo{ID: id, EventTypes: types, RegisteredAt: r.registeredAt})
	}
	return out
}

// FunctionalObserver adapts a plain function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver builds an Observer from a handler function.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{id: id, handler: handler}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string { return f.id }

// newCloudEvent builds a minimal CloudEvent carrying the given JSON-able data.
func newCloudEvent(source, eventType string, data any) cloudevents.Event {
	ce := cloudevents.NewEvent()
	ce.SetSource(source)
	ce.SetType(eventType)
	ce.SetID(newEventID())
	ce.SetTime(time.Now())
	if data != nil {
		_ = ce.SetData(cloudevents.ApplicationJSON, data)
	}
	return ce
}
