package eventhub

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable record dispatched through the hub. Producers never
// mutate an Event after creation; preprocessors that need to transform one
// clone it via WithData/WithMask and friends.
type Event struct {
	id         string
	eventType  string
	source     string
	responseID string
	parentID   string
	mask       []string
	data       map[string]any
	timestamp  time.Time
}

// EventOption configures an Event at construction time.
type EventOption func(*Event)

// NewEvent constructs an immutable Event. type_ and source are opaque,
// caller-defined tags; the wildcard value "*" has special meaning only to
// listener matching (§ListenerEntry), never here.
func NewEvent(type_, source string, opts ...EventOption) Event {
	e := Event{
		id:        uuid.NewString(),
		eventType: type_,
		source:    source,
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithData attaches a data payload. The map is cloned so the caller's copy
// can be mutated freely afterward without affecting the Event.
func WithData(data map[string]any) EventOption {
	return func(e *Event) { e.data = cloneData(data) }
}

// WithResponseID marks this Event as a response to the event carrying the
// given unique identifier.
func WithResponseID(responseID string) EventOption {
	return func(e *Event) { e.responseID = responseID }
}

// WithParentID links this Event to a causal parent.
func WithParentID(parentID string) EventOption {
	return func(e *Event) { e.parentID = parentID }
}

// WithMask marks this Event for recording in the event-history index using
// the given ordered data-path selectors.
func WithMask(mask ...string) EventOption {
	return func(e *Event) { e.mask = append([]string(nil), mask...) }
}

// withID overrides the generated identifier. Nothing in the package calls it
// at present.
func withID(id string) EventOption {
	return func(e *Event) { e.id = id }
}

// ID returns the event's stable unique identifier.
func (e Event) ID() string { return e.id }

// Type returns the event's opaque type tag.
func (e Event) Type() string { return e.eventType }

// Source returns the event's opaque source tag.
func (e Event) Source() string { return e.source }

// ResponseID returns the unique identifier of the event this is a response
// to, or "" if this event is not a response.
func (e Event) ResponseID() string { return e.responseID }

// ParentID returns the causal parent identifier, or "" if none.
func (e Event) ParentID() string { return e.parentID }

// Mask returns the ordered data-path selectors used by the event-history
// collaborator, or nil if this event is not recorded.
func (e Event) Mask() []string { return append([]string(nil), e.mask...) }

// Data returns a clone of the event's data payload; nil if none was set.
func (e Event) Data() map[string]any { return cloneData(e.data) }

// Timestamp returns the monotonic creation time recorded at construction.
func (e Event) Timestamp() time.Time { return e.timestamp }

// withData returns a clone of e with its data payload replaced, preserving
// identity, type, source and mask. Used by preprocessors, which may only
// transform data — never identity or ordering-relevant fields.
func (e Event) withData(data map[string]any) Event {
	clone := e
	clone.data = cloneData(data)
	return clone
}

// newEventID generates a fresh unique identifier, shared by Event
// construction and CloudEvent notification IDs.
func newEventID() string { return uuid.NewString() }

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
