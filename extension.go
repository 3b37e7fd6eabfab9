package eventhub

import "strings"

// Extension is the collaborator interface a host provides for each
// registered extension (§6). The hub constructs one via the factory
// supplied at registration, passing it the ExtensionApi façade.
type Extension interface {
	// Name returns the canonical, stable identity used for shared-state
	// lookups and registry keys.
	Name() string

	// FriendlyName returns a human-readable name, or "" if none.
	FriendlyName() string

	// Version returns the extension's version string, or "" if none.
	Version() string

	// Metadata returns arbitrary extension metadata, or nil if none.
	Metadata() map[string]string

	// OnExtensionRegistered is invoked once registration succeeds.
	OnExtensionRegistered()

	// OnExtensionUnregistered is invoked as the container shuts down.
	OnExtensionUnregistered()

	// ReadyForEvent is the per-event readiness predicate (§4.2). Returning
	// false defers the event without losing order.
	ReadyForEvent(event Event) bool
}

// ExtensionFactory constructs an Extension, given the façade it should use
// to talk back to the hub and its own container. Construction failures
// surface as RegistrationExtensionInitializationFailure.
type ExtensionFactory func(api ExtensionApi) (Extension, error)

// RunState is the ExtensionContainer lifecycle state (§4.2).
type RunState int

const (
	StateInitializing RunState = iota
	StateRunning
	StatePaused
	StateShutdown
)

func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateShutdown:
		return "SHUTDOWN"
	default:
		return "INITIALIZING"
	}
}

// ListenerEntry is a registered (type, source, handler) triple. The match
// rule: (type matches OR type == "*") AND (source matches OR source ==
// "*"), case-insensitive, wildcard only on the literal "*" (§3).
type ListenerEntry struct {
	EventType string
	Source    string
	Handler   func(Event)
}

func (l ListenerEntry) matches(e Event) bool {
	return matchField(l.EventType, e.Type()) && matchField(l.Source, e.Source())
}

func matchField(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	return strings.EqualFold(pattern, value)
}

// ExtensionRecord is the registry-visible, read-only view of a registered
// extension, used by the hub's own shared state and the debug surface.
type ExtensionRecord struct {
	Name                     string
	FriendlyName             string
	Version                  string
	Metadata                 map[string]string
	LastProcessedEventNumber int64
	RunState                 RunState
}
