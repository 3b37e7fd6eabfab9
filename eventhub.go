package eventhub

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/GoCodeAlone/eventhub/internal/health"
	"github.com/GoCodeAlone/eventhub/internal/lifecycle"
	"github.com/GoCodeAlone/eventhub/internal/registry"
)

// hubSharedStateName is the canonical shared-state name the hub publishes
// its own state under (§4.5). Kept literal to match the host platform's
// existing wire contract; not derived from the Go module path.
const hubSharedStateName = "com.adobe.module.eventhub"

// placeholderContainerName is the registry key for the hub-wide listener
// shortcut (§6's registerListener).
const placeholderContainerName = "__hub__"

// EventHub is the global ingress, event-number authority, preprocessor
// pipeline, fan-out engine and extension registry (§4.5). It is
// constructed explicitly and torn down explicitly (§9: no process-wide
// singleton); the legacy top-level accessor, if any, is a thin wrapper
// around one instance.
type EventHub struct {
	logger Logger

	hubQueue  *serialQueue // domain: hub writer
	dispQueue *serialQueue // domain: dispatcher writer

	numbers *eventNumberRegistry

	mu         sync.RWMutex
	containers map[string]*ExtensionContainer
	order      []string // insertion order, for deterministic hub-state publishing
	extReg     *registry.Registry
	health     *health.Aggregator

	transitions lifecycle.Dispatcher
	runLog      lifecycle.Store

	preprocessors []func(Event) Event

	completion *CompletionHandler
	history    EventHistory
	subject    *subjectImpl

	hubState *SharedStateManager

	started      bool
	shuttingDown bool
	wrapper      WrapperType

	defaultTimeout time.Duration
	sweepInterval  time.Duration
	sweeper        *sweeper
}

// HubOption configures an EventHub at construction.
type HubOption func(*EventHub)

// WithLogger overrides the default no-op logger.
func WithLogger(logger Logger) HubOption {
	return func(h *EventHub) { h.logger = logger }
}

// WithCompletionWorkers sets the bounded worker-pool size for response
// handler dispatch.
func WithCompletionWorkers(n int) HubOption {
	return func(h *EventHub) { h.completion = NewCompletionHandler(n, h.logger) }
}

// WithEventHistory installs the event-history collaborator.
func WithEventHistory(history EventHistory) HubOption {
	return func(h *EventHub) { h.history = history }
}

// WithDefaultCompletionTimeout sets the timeout used by RegisterResponseListener.
func WithDefaultCompletionTimeout(d time.Duration) HubOption {
	return func(h *EventHub) { h.defaultTimeout = d }
}

// WithPreprocessor appends a pure Event -> Event transform to the pipeline,
// run in registration order before fan-out (§4.5).
func WithPreprocessor(fn func(Event) Event) HubOption {
	return func(h *EventHub) { h.preprocessors = append(h.preprocessors, fn) }
}

// WithSweepInterval enables the periodic eviction sweep of shared-state
// snapshots and event-number bookkeeping that every registered extension
// has already processed past. A non-positive interval (the default)
// disables the sweep entirely.
func WithSweepInterval(d time.Duration) HubOption {
	return func(h *EventHub) { h.sweepInterval = d }
}

// WithLifecycleObserver registers an observer on the hub's internal
// extension-lifecycle transition dispatcher (registered/started/paused/
// resumed/stopped/failed, plus the hub's own starting/started/shutting-down/
// shutdown transitions). Distinct from Subject's CloudEvents notifications —
// this is the audit trail the debug server reads.
func WithLifecycleObserver(observer lifecycle.Observer) HubOption {
	return func(h *EventHub) {
		_ = h.transitions.RegisterObserver(context.Background(), observer)
	}
}

// NewEventHub constructs a fresh hub. Its hub and dispatcher writers run
// from construction, so an event dispatched before Start is numbered,
// preprocessed and fanned out to the extensions registered at that point
// right away; Start does not hold back or replay such events.
func NewEventHub(opts ...HubOption) *EventHub {
	h := &EventHub{
		logger:         noopLogger{},
		numbers:        newEventNumberRegistry(),
		containers:     make(map[string]*ExtensionContainer),
		extReg:         registry.New(),
		health:         health.NewAggregator(),
		hubState:       NewSharedStateManager(),
		defaultTimeout: 5 * time.Second,
	}
	h.runLog = lifecycle.NewMemoryStore()
	h.transitions = lifecycle.NewDispatcher(lifecycle.DispatchConfig{}, h.runLog)
	for _, opt := range opts {
		opt(h)
	}
	if h.completion == nil {
		h.completion = NewCompletionHandler(8, h.logger)
	}
	h.subject = newSubject(h.logger)
	h.hubQueue = newSerialQueue()
	h.dispQueue = newSerialQueue()
	h.sweeper = newSweeper(h.sweepInterval, h.sweepEvictable, h.logger)
	_ = h.transitions.Start(context.Background())
	h.containers[placeholderContainerName] = newExtensionContainer(placeholderContainerName, h, h.logger)
	h.containers[placeholderContainerName].start(noopExtension{name: placeholderContainerName})
	return h
}

type noopExtension struct{ name string }

func (n noopExtension) Name() string                 { return n.name }
func (n noopExtension) FriendlyName() string         { return "" }
func (n noopExtension) Version() string              { return "" }
func (n noopExtension) Metadata() map[string]string  { return nil }
func (n noopExtension) OnExtensionRegistered()        {}
func (n noopExtension) OnExtensionUnregistered()      {}
func (n noopExtension) ReadyForEvent(Event) bool      { return true }

// Subject exposes the hub's CloudEvents observer surface.
func (h *EventHub) Subject() Subject { return h.subject }

// SetWrapperType sets the wrapper tag. Only effective before Start; after
// Start, the call is logged and ignored (§4.5).
func (h *EventHub) SetWrapperType(w WrapperType) {
	h.hubQueue.Submit(func() {
		if h.started {
			h.logger.Warn("ignoring SetWrapperType after start", "wrapper", w)
			return
		}
		h.wrapper = w
	})
}

// Start marks the hub started, publishes hub state, starts the sweeper and
// notifies observers. The writers that drain dispatched events have been
// running since construction; Start does not gate them.
func (h *EventHub) Start() {
	h.recordTransition(hubSharedStateName, lifecycle.EventTypeHubStarting, lifecycle.PhaseInitialization, lifecycle.StatusStarted, "")
	done := make(chan struct{})
	h.hubQueue.Submit(func() {
		h.started = true
		h.publishHubStateLocked()
		done <- struct{}{}
	})
	<-done
	h.sweeper.Start()
	_ = h.subject.NotifyObservers(context.Background(), newCloudEvent(hubSharedStateName, EventTypeHubStarted, nil))
	h.recordTransition(hubSharedStateName, lifecycle.EventTypeHubStarted, lifecycle.PhaseInitialization, lifecycle.StatusCompleted, "")
}

// Dispatch enqueues e into the hub's global ingress (§4.5). Fire-and-forget:
// no error is returned on this path (§7).
func (h *EventHub) Dispatch(e Event) {
	h.hubQueue.Submit(func() {
		if h.shuttingDown {
			return
		}
		number := h.numbers.assign(e.ID())
		h.dispQueue.Submit(func() {
			h.processPreprocessed(numberedEvent{event: e, number: number})
		})
	})
}

// processPreprocessed runs the preprocessor pipeline then fans the result
// out to response routing, extension inboxes, and event history (§4.5).
// Runs entirely on the dispatcher writer.
func (h *EventHub) processPreprocessed(ne numberedEvent) {
	e := ne.event
	for _, pp := range h.preprocessors {
		e = h.safePreprocess(pp, e)
	}
	ne.event = e

	if e.ResponseID() != "" {
		h.completion.Resolve(e)
	}

	h.mu.RLock()
	containers := make([]*ExtensionContainer, 0, len(h.containers))
	for _, c := range h.containers {
		containers = append(containers, c)
	}
	h.mu.RUnlock()
	for _, c := range containers {
		c.enqueue(ne)
	}

	if len(e.Mask()) > 0 && h.history != nil {
		h.history.RecordEvent(e, func(ok bool) {
			if !ok {
				h.logger.Warn("event history record failed", "eventID", e.ID())
			}
		})
	}
}

// recordTransition dispatches a lifecycle.Transition to the internal
// audit trail. Fire-and-forget, like Subject's CloudEvents notifications;
// a full dispatch buffer drops the transition rather than blocking a
// lifecycle operation.
func (h *EventHub) recordTransition(extensionName string, eventType lifecycle.EventType, phase lifecycle.Phase, status lifecycle.Status, message string) {
	_ = h.transitions.Dispatch(context.Background(), lifecycle.Transition{
		ID:            fmt.Sprintf("%s-%d", extensionName, time.Now().UnixNano()),
		Type:          eventType,
		ExtensionName: extensionName,
		Timestamp:     time.Now(),
		Phase:         phase,
		Status:        status,
		Message:       message,
	})
}

func (h *EventHub) safePreprocess(pp func(Event) Event, e Event) (out Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("preprocessor panicked, dropping transform for this event", "recovered", r)
			out = e
		}
	}()
	return pp(e)
}

// RegisterListener is the hub-wide shortcut (§6) that targets the
// placeholder container rather than a named extension. The placeholder
// container is started like any other (drain loop running, always ready)
// and is included in processPreprocessed's fan-out, so handlers registered
// here fire on every matching dispatch exactly like a per-extension
// listener would.
func (h *EventHub) RegisterListener(eventType, source string, handler func(Event)) {
	h.mu.RLock()
	c := h.containers[placeholderContainerName]
	h.mu.RUnlock()
	c.registerListener(eventType, source, handler)
}

// RegisterResponseListener registers handler against triggerEvent's ID with
// the given timeout.
func (h *EventHub) RegisterResponseListener(triggerEvent Event, timeout time.Duration, handler ResponseHandler) {
	if timeout <= 0 {
		timeout = h.defaultTimeout
	}
	h.completion.ScheduleTimeoutHandler(triggerEvent.ID(), timeout, handler)
}

// RegisterExtension constructs and registers a new extension (§4.5).
func (h *EventHub) RegisterExtension(name string, factory ExtensionFactory, cb func(RegistrationError)) {
	if cb == nil {
		cb = func(RegistrationError) {}
	}
	h.hubQueue.Submit(func() {
		h.registerExtensionLocked(name, factory, cb)
	})
}

func (h *EventHub) registerExtensionLocked(name string, factory ExtensionFactory, cb func(RegistrationError)) {
	if strings.TrimSpace(name) == "" {
		cb(RegistrationInvalidExtensionName)
		return
	}
	h.mu.Lock()
	if _, exists := h.containers[name]; exists {
		h.mu.Unlock()
		cb(RegistrationDuplicateExtensionName)
		return
	}
	container := newExtensionContainer(name, h, h.logger)
	h.containers[name] = container
	h.order = append(h.order, name)
	h.mu.Unlock()

	api := newExtensionApi(h, container)
	ext, err := h.safeConstruct(factory, api)
	if err != nil {
		h.mu.Lock()
		delete(h.containers, name)
		h.removeFromOrderLocked(name)
		h.mu.Unlock()
		h.logger.Error("extension initialization failed", "extension", name, "error", err)
		h.recordTransition(name, lifecycle.EventTypeExtensionFailed, lifecycle.PhaseInitialization, lifecycle.StatusFailed, err.Error())
		cb(RegistrationExtensionInitializationFailure)
		return
	}

	container.start(ext)
	_ = h.extReg.Register(context.Background(), name, ext)
	h.safeCallback(func() { ext.OnExtensionRegistered() }, name)

	if observable, ok := ext.(ObservableExtension); ok {
		if err := h.safeRegisterObservers(observable); err != nil {
			h.logger.Warn("extension observer registration failed", "extension", name, "error", err)
		}
	}

	ctx := context.Background()
	_ = h.subject.NotifyObservers(ctx, newCloudEvent(name, EventTypeExtensionRegistered, map[string]any{"name": name}))
	h.recordTransition(name, lifecycle.EventTypeExtensionRegistered, lifecycle.PhaseRegistration, lifecycle.StatusCompleted, "")
	h.recordTransition(name, lifecycle.EventTypeExtensionStarted, lifecycle.PhaseRunning, lifecycle.StatusStarted, "")

	h.publishHubStateLocked()
	cb(RegistrationNone)
}

func (h *EventHub) safeConstruct(factory ExtensionFactory, api ExtensionApi) (ext Extension, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extension factory panicked: %v", r)
		}
	}()
	return factory(api)
}

func (h *EventHub) safeCallback(fn func(), extensionName string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("extension lifecycle callback panicked", "extension", extensionName, "recovered", r)
		}
	}()
	fn()
}

func (h *EventHub) safeRegisterObservers(ext ObservableExtension) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("RegisterObservers panicked: %v", r)
		}
	}()
	return ext.RegisterObservers(h.subject)
}

func (h *EventHub) removeFromOrderLocked(name string) {
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}

// RegisterExtensions registers every entry in the set, then calls Start
// once the last completes, then invokes cb (§4.5).
func (h *EventHub) RegisterExtensions(factories map[string]ExtensionFactory, cb func(RegistrationError)) {
	if cb == nil {
		cb = func(RegistrationError) {}
	}
	remaining := len(factories)
	if remaining == 0 {
		h.Start()
		cb(RegistrationNone)
		return
	}
	var mu sync.Mutex
	var firstErr RegistrationError = RegistrationNone
	for name, factory := range factories {
		name, factory := name, factory
		h.RegisterExtension(name, factory, func(regErr RegistrationError) {
			mu.Lock()
			remaining--
			if regErr != RegistrationNone && firstErr == RegistrationNone {
				firstErr = regErr
			}
			done := remaining == 0
			mu.Unlock()
			if done {
				h.Start()
				cb(firstErr)
			}
		})
	}
}

// UnregisterExtension shuts down the named container and re-publishes hub
// state. Returns RegistrationExtensionNotRegistered if name is absent.
func (h *EventHub) UnregisterExtension(name string, cb func(RegistrationError)) {
	if cb == nil {
		cb = func(RegistrationError) {}
	}
	h.hubQueue.Submit(func() {
		h.mu.Lock()
		container, exists := h.containers[name]
		if !exists {
			h.mu.Unlock()
			cb(RegistrationExtensionNotRegistered)
			return
		}
		delete(h.containers, name)
		h.removeFromOrderLocked(name)
		h.mu.Unlock()
		h.extReg.Unregister(context.Background(), name)

		container.shutdown()
		_ = h.subject.NotifyObservers(context.Background(), newCloudEvent(name, EventTypeExtensionUnregistered, map[string]any{"name": name}))
		h.recordTransition(name, lifecycle.EventTypeExtensionStopped, lifecycle.PhaseShutdown, lifecycle.StatusCompleted, "")
		h.publishHubStateLocked()
		cb(RegistrationNone)
	})
}

// Shutdown stops accepting new events, shuts down every container, and
// cancels outstanding completion timers.
func (h *EventHub) Shutdown() {
	h.recordTransition(hubSharedStateName, lifecycle.EventTypeHubShuttingDown, lifecycle.PhaseShutdown, lifecycle.StatusStarted, "")
	h.sweeper.Stop()
	done := make(chan struct{})
	h.hubQueue.Submit(func() {
		h.shuttingDown = true
		done <- struct{}{}
	})
	<-done

	h.mu.Lock()
	containers := make([]*ExtensionContainer, 0, len(h.containers))
	for _, c := range h.containers {
		containers = append(containers, c)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range containers {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.shutdown()
			if c.name != placeholderContainerName {
				h.recordTransition(c.name, lifecycle.EventTypeExtensionStopped, lifecycle.PhaseShutdown, lifecycle.StatusCompleted, "")
			}
		}()
	}
	wg.Wait()

	h.completion.Shutdown()
	_ = h.subject.NotifyObservers(context.Background(), newCloudEvent(hubSharedStateName, EventTypeHubShutdown, nil))
	h.recordTransition(hubSharedStateName, lifecycle.EventTypeHubShutdown, lifecycle.PhaseShutdown, lifecycle.StatusCompleted, "")
	_ = h.transitions.Stop(context.Background())
	h.dispQueue.Close()
	h.hubQueue.Close()
}

// ExtensionRecords returns a snapshot of every registered extension, in
// registration order, for introspection (debug server, hub state).
func (h *EventHub) ExtensionRecords() []ExtensionRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ExtensionRecord, 0, len(h.order))
	for _, name := range h.order {
		c, ok := h.containers[name]
		if !ok {
			continue
		}
		var friendly, version string
		var metadata map[string]string
		c.mu.Lock()
		ext := c.extension
		c.mu.Unlock()
		if ext != nil {
			friendly = ext.FriendlyName()
			version = ext.Version()
			metadata = ext.Metadata()
		}
		out = append(out, ExtensionRecord{
			Name:                     name,
			FriendlyName:             friendly,
			Version:                  version,
			Metadata:                 metadata,
			LastProcessedEventNumber: c.lastProcessed(),
			RunState:                 c.runState(),
		})
	}
	return out
}

// sweepEvictable drops shared-state snapshots and event-number bookkeeping
// that every registered extension has already processed past. Safe to call
// from the cron goroutine directly: it only ever touches hub-writer-owned
// state by submitting onto hubQueue, never mutating it inline.
func (h *EventHub) sweepEvictable() {
	h.hubQueue.Submit(func() {
		h.mu.RLock()
		floor := int64(-1)
		containers := make([]*ExtensionContainer, 0, len(h.containers))
		for name, c := range h.containers {
			if name == placeholderContainerName {
				continue
			}
			containers = append(containers, c)
			if lp := c.lastProcessed(); floor == -1 || lp < floor {
				floor = lp
			}
		}
		h.mu.RUnlock()
		if floor <= 0 {
			return
		}

		dropped := h.numbers.evictBefore(floor)
		for _, c := range containers {
			dropped += c.sharedStateManager(KindStandard).EvictBefore(floor)
			dropped += c.sharedStateManager(KindXDM).EvictBefore(floor)
		}
		dropped += h.hubState.EvictBefore(floor)
		if dropped > 0 {
			h.logger.Debug("swept evictable shared-state and event-number entries", "floor", floor, "dropped", dropped)
		}
	})
}

// publishHubStateLocked re-publishes the hub's own shared state (§4.5).
// Only takes effect after Start; must be called on the hub writer.
func (h *EventHub) publishHubStateLocked() {
	if !h.started {
		return
	}
	extensions := make(map[string]any)
	for _, rec := range h.ExtensionRecords() {
		extensions[rec.Name] = map[string]any{
			"friendlyName": rec.FriendlyName,
			"version":      rec.Version,
			"metadata":     rec.Metadata,
		}
	}
	payload := map[string]any{
		"version":    h.numbers.current(),
		"wrapper":    string(h.wrapper),
		"extensions": extensions,
	}
	version := h.numbers.nextTick()
	h.hubState.SetState(version, payload)
	_ = h.subject.NotifyObservers(context.Background(), newCloudEvent(hubSharedStateName, EventTypeHubSharedStateChanged, payload))
}

// GetHubState returns the latest hub shared-state snapshot.
func (h *EventHub) GetHubState() SharedStateResult {
	replyCh := make(chan SharedStateResult, 1)
	h.hubQueue.Submit(func() {
		replyCh <- h.hubState.Resolve(VersionLatest)
	})
	return <-replyCh
}

// createSharedState implements ExtensionApi.CreateSharedState (§4.5's
// version-resolution rule). Runs on the hub writer.
func (h *EventHub) createSharedState(owner *ExtensionContainer, kind SharedStateKind, state map[string]any, event *Event) {
	done := make(chan struct{})
	h.hubQueue.Submit(func() {
		defer close(done)
		if owner.runState() == StateInitializing {
			h.logger.Warn("createSharedState called before extension fully initialized", "extension", owner.name)
			return
		}
		mgr := owner.sharedStateManager(kind)
		version := h.resolveWriteVersionLocked(mgr, event)
		if !mgr.SetState(version, state) {
			h.logger.Warn("createSharedState: non-monotone version, ignored", "extension", owner.name, "version", version)
			return
		}
		h.notifyStateChangeLocked(kind, owner.name)
	})
	<-done
}

// createPendingSharedState implements ExtensionApi.CreatePendingSharedState.
func (h *EventHub) createPendingSharedState(owner *ExtensionContainer, kind SharedStateKind, event *Event) func(map[string]any) {
	replyCh := make(chan int64, 1)
	var ok bool
	h.hubQueue.Submit(func() {
		mgr := owner.sharedStateManager(kind)
		version := h.resolveWriteVersionLocked(mgr, event)
		ok = mgr.SetPendingState(version)
		if !ok {
			h.logger.Warn("createPendingSharedState: non-monotone version, ignored", "extension", owner.name, "version", version)
			replyCh <- -1
			return
		}
		replyCh <- version
	})
	version := <-replyCh
	if version < 0 {
		return func(map[string]any) {}
	}

	var resolved bool
	var mu sync.Mutex
	return func(state map[string]any) {
		mu.Lock()
		if resolved {
			mu.Unlock()
			return
		}
		resolved = true
		mu.Unlock()
		done := make(chan struct{})
		h.hubQueue.Submit(func() {
			defer close(done)
			mgr := owner.sharedStateManager(kind)
			if !mgr.UpdatePendingState(version, state) {
				h.logger.Warn("resolver fired but pending snapshot already resolved", "extension", owner.name, "version", version)
				return
			}
			h.notifyStateChangeLocked(kind, owner.name)
		})
		<-done
	}
}

// resolveWriteVersionLocked implements §4.5's write-version resolution
// rule. Must run on the hub writer.
func (h *EventHub) resolveWriteVersionLocked(mgr *SharedStateManager, event *Event) int64 {
	if event != nil {
		if n, ok := h.numbers.numberOf(event.ID()); ok {
			return n
		}
	}
	if !mgr.IsEmpty() {
		return h.numbers.nextTick()
	}
	return 0
}

// notifyStateChangeLocked dispatches the internal HUB/SHARED_STATE
// notification event (§4.5) and emits the corresponding CloudEvent.
func (h *EventHub) notifyStateChangeLocked(kind SharedStateKind, ownerName string) {
	eventType := EventTypeSharedStateChanged
	if kind == KindXDM {
		eventType = EventTypeSharedStateXDMChanged
	}
	internal := NewEvent("HUB", "SHARED_STATE", WithData(map[string]any{"stateOwner": ownerName}))
	number := h.numbers.assign(internal.ID())
	h.dispQueue.Submit(func() {
		h.processPreprocessed(numberedEvent{event: internal, number: number})
	})
	_ = h.subject.NotifyObservers(context.Background(), newCloudEvent(ownerName, eventType, map[string]any{"stateOwner": ownerName}))
}

// getSharedState implements ExtensionApi.GetSharedState (§4.5).
func (h *EventHub) getSharedState(kind SharedStateKind, fromExtensionName string, event *Event, barrier bool, resolution SharedStateResolution) *SharedStateResult {
	replyCh := make(chan *SharedStateResult, 1)
	h.hubQueue.Submit(func() {
		h.mu.RLock()
		owner, ok := h.containers[fromExtensionName]
		h.mu.RUnlock()
		if !ok {
			replyCh <- nil
			return
		}

		var v int64 = VersionLatest
		if event != nil {
			if n, ok := h.numbers.numberOf(event.ID()); ok {
				v = n
			}
		}

		mgr := owner.sharedStateManager(kind)
		var result SharedStateResult
		if resolution == ResolutionAny {
			result = mgr.Resolve(v)
		} else {
			result = mgr.ResolveLastSet(v)
		}

		if barrier && event != nil && result.Status == StatusSet && v != VersionLatest {
			if owner.lastProcessed() < v-1 {
				result = SharedStateResult{Status: StatusPending, Value: result.Value}
			}
		}
		replyCh <- &result
	})
	return <-replyCh
}

// getHistoricalEvents forwards to the event-history collaborator, if any.
func (h *EventHub) getHistoricalEvents(queries []HistoryQuery, enforceOrder bool, handler func(int)) {
	if h.history == nil {
		if handler != nil {
			handler(0)
		}
		return
	}
	h.history.GetEvents(queries, enforceOrder, handler)
}

// LifecycleHistory returns recorded extension/hub transitions matching
// criteria, most-recent-last, for the debug server's introspection surface.
func (h *EventHub) LifecycleHistory(criteria lifecycle.QueryCriteria) []lifecycle.Transition {
	out, err := h.runLog.Query(context.Background(), criteria)
	if err != nil {
		return nil
	}
	return out
}

// HealthSnapshot reduces every extension's run-state into an aggregated
// diagnostic snapshot (SPEC_FULL.md §3), exposed by the debug server.
func (h *EventHub) HealthSnapshot() health.AggregatedStatus {
	records := h.ExtensionRecords()
	snaps := make([]health.ExtensionSnapshot, 0, len(records))
	for _, r := range records {
		snaps = append(snaps, health.ExtensionSnapshot{
			Name:                     r.Name,
			RunState:                 r.RunState.String(),
			LastProcessedEventNumber: r.LastProcessedEventNumber,
		})
	}
	return h.health.Aggregate(snaps)
}

// ResolveExtensionsByInterface returns every registered extension currently
// satisfying interfaceType — e.g. ObservableExtension — via the internal
// name/interface registry rather than a live scan of the container map.
func (h *EventHub) ResolveExtensionsByInterface(interfaceType reflect.Type) []Extension {
	values := h.extReg.ResolveAllByInterface(context.Background(), interfaceType)
	out := make([]Extension, 0, len(values))
	for _, v := range values {
		if ext, ok := v.(Extension); ok {
			out = append(out, ext)
		}
	}
	return out
}

// WakeExtension re-evaluates a container's inbox head without delivering a
// new event — used after a shared-state write changes something another
// extension's readyForEvent may depend on.
func (h *EventHub) WakeExtension(name string) {
	h.mu.RLock()
	c, ok := h.containers[name]
	h.mu.RUnlock()
	if ok {
		c.wake()
	}
}

// WakeAll re-evaluates every container's inbox head. The hub itself does not
// call it: a shared-state change already reaches every container as the
// internal shared-state event, whose enqueue wakes each drain loop.
func (h *EventHub) WakeAll() {
	h.mu.RLock()
	containers := make([]*ExtensionContainer, 0, len(h.containers))
	for _, c := range h.containers {
		containers = append(containers, c)
	}
	h.mu.RUnlock()
	for _, c := range containers {
		c.wake()
	}
}
