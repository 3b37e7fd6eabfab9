package eventhub

// ExtensionApi is the façade surface an extension sees (§4.1). Every method
// routes to the ExtensionContainer or the EventHub core; the façade itself
// holds no live state of its own — it forwards to the hub by name, never by
// holding the hub's live registry (§9's cyclic-graph design note). This
// makes it trivial to substitute a fake in tests.
type ExtensionApi interface {
	// RegisterEventListener registers a listener in this extension's table.
	// Idempotent on exact (type, source) triples.
	RegisterEventListener(eventType, source string, handler func(Event))

	// Dispatch enqueues event into the hub's global ingress.
	Dispatch(event Event)

	// StartEvents resumes delivery for this extension.
	StartEvents()

	// StopEvents pauses delivery for this extension; events still
	// accumulate in the inbox.
	StopEvents()

	// CreateSharedState sets a SET snapshot at the version resolved from
	// event (§4.5). Fails silently, with a logged warning, if the
	// extension is not fully initialized.
	CreateSharedState(kind SharedStateKind, state map[string]any, event *Event)

	// CreatePendingSharedState reserves a PENDING snapshot and returns a
	// one-shot resolver. Calling the resolver more than once is a no-op
	// after the first call.
	CreatePendingSharedState(kind SharedStateKind, event *Event) func(state map[string]any)

	// GetSharedState performs a read per the resolution rules of §4.5.
	GetSharedState(kind SharedStateKind, fromExtensionName string, event *Event, barrier bool, resolution SharedStateResolution) *SharedStateResult

	// UnregisterExtension requests deregistration of the calling extension.
	UnregisterExtension()

	// GetHistoricalEvents forwards to the event-history collaborator.
	GetHistoricalEvents(queries []HistoryQuery, enforceOrder bool, handler func(int))
}

// extensionApiImpl is the concrete ExtensionApi bound to one container at
// construction time.
type extensionApiImpl struct {
	hub       *EventHub
	container *ExtensionContainer
}

func newExtensionApi(hub *EventHub, container *ExtensionContainer) ExtensionApi {
	return &extensionApiImpl{hub: hub, container: container}
}

func (a *extensionApiImpl) RegisterEventListener(eventType, source string, handler func(Event)) {
	a.container.registerListener(eventType, source, handler)
}

func (a *extensionApiImpl) Dispatch(event Event) {
	a.hub.Dispatch(event)
}

func (a *extensionApiImpl) StartEvents() {
	a.container.setPaused(false)
}

func (a *extensionApiImpl) StopEvents() {
	a.container.setPaused(true)
}

func (a *extensionApiImpl) CreateSharedState(kind SharedStateKind, state map[string]any, event *Event) {
	a.hub.createSharedState(a.container, kind, state, event)
}

func (a *extensionApiImpl) CreatePendingSharedState(kind SharedStateKind, event *Event) func(state map[string]any) {
	return a.hub.createPendingSharedState(a.container, kind, event)
}

func (a *extensionApiImpl) GetSharedState(kind SharedStateKind, fromExtensionName string, event *Event, barrier bool, resolution SharedStateResolution) *SharedStateResult {
	return a.hub.getSharedState(kind, fromExtensionName, event, barrier, resolution)
}

func (a *extensionApiImpl) UnregisterExtension() {
	a.hub.UnregisterExtension(a.container.name, func(RegistrationError) {})
}

func (a *extensionApiImpl) GetHistoricalEvents(queries []HistoryQuery, enforceOrder bool, handler func(int)) {
	a.hub.getHistoricalEvents(queries, enforceOrder, handler)
}
