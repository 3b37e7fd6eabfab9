// Package lifecycle records and replays the hub's own extension-lifecycle
// transitions (registered/initialized/started/paused/stopped) — one
// domain, extension run-state, not a generic application/module event bus.
// This is distinct from the CloudEvents eventhub.Observer/Subject surface
// (external notification) and from the history package (domain Event
// replay) — it is an internal audit trail the debug server reads.
package lifecycle

import (
	"context"
	"time"
)

// Dispatcher fans a Transition out to registered Observers and persists it
// to a Store.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Transition) error
	RegisterObserver(ctx context.Context, observer Observer) error
	UnregisterObserver(ctx context.Context, observerID string) error
	GetObservers(ctx context.Context) ([]Observer, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// Observer is notified of Transitions matching its EventTypes, in
// descending Priority order.
type Observer interface {
	OnTransition(ctx context.Context, t Transition) error
	ID() string
	EventTypes() []EventType
	Priority() int
}

// Store persists and queries recorded Transitions.
type Store interface {
	Store(ctx context.Context, t Transition) error
	Get(ctx context.Context, id string) (Transition, error)
	Query(ctx context.Context, criteria QueryCriteria) ([]Transition, error)
	GetHistory(ctx context.Context, extensionName string, since time.Time) ([]Transition, error)
}

// Transition is one recorded extension (or hub) run-state change.
type Transition struct {
	ID            string
	Type          EventType
	ExtensionName string
	Timestamp     time.Time
	Phase         Phase
	Status        Status
	Message       string
	Error         string
	Duration      time.Duration
}

// EventType names the kind of transition, in the hub's own extension/hub
// lifecycle vocabulary — a hub extension has no "module registering" phase
// distinct from "extension registered".
type EventType string

const (
	EventTypeHubStarting         EventType = "hub.starting"
	EventTypeHubStarted          EventType = "hub.started"
	EventTypeHubShuttingDown     EventType = "hub.shutting_down"
	EventTypeHubShutdown         EventType = "hub.shutdown"
	EventTypeExtensionRegistered EventType = "extension.registered"
	EventTypeExtensionStarted    EventType = "extension.started"
	EventTypeExtensionPaused     EventType = "extension.paused"
	EventTypeExtensionResumed    EventType = "extension.resumed"
	EventTypeExtensionStopped    EventType = "extension.stopped"
	EventTypeExtensionFailed     EventType = "extension.failed"
)

// Phase is the broader lifecycle stage a Transition belongs to.
type Phase string

const (
	PhaseRegistration   Phase = "registration"
	PhaseInitialization Phase = "initialization"
	PhaseRunning        Phase = "running"
	PhaseShutdown       Phase = "shutdown"
)

// Status is the outcome of a Transition.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// QueryCriteria filters Store.Query results.
type QueryCriteria struct {
	EventTypes     []EventType
	ExtensionNames []string
	Since          *time.Time
	Until          *time.Time
	Limit          int
}

// DispatchConfig parameterizes a Dispatcher.
type DispatchConfig struct {
	BufferSize      int
	ObserverTimeout time.Duration
}
