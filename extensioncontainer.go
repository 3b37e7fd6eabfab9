package eventhub

import (
	"sync"

	"github.com/GoCodeAlone/eventhub/internal/lifecycle"
)

// numberedEvent pairs an Event with the event number assigned to it at
// dispatch — the only place that pairing is threaded through the system,
// since Event itself stays an immutable value with no notion of ordering.
type numberedEvent struct {
	event  Event
	number int64
}

// ExtensionContainer owns one extension's serial inbox, listener table,
// readiness gate and lifecycle state. It is the single writer for
// everything it owns (§5); the hub writer only ever talks to it by
// enqueuing numberedEvents or issuing lifecycle commands.
type ExtensionContainer struct {
	name      string
	extension Extension
	hub       *EventHub
	logger    Logger

	standard *SharedStateManager
	xdm      *SharedStateManager

	mu        sync.Mutex
	cond      *sync.Cond
	inbox     []numberedEvent
	listeners []ListenerEntry
	state     RunState

	lastProcessedEventNumber int64

	stopDrain chan struct{}
	drainDone chan struct{}
}

// newExtensionContainer constructs a container in state INITIALIZING. The
// caller (hub writer, via registerExtension) is responsible for invoking
// the extension factory and transitioning to RUNNING or SHUTDOWN.
func newExtensionContainer(name string, hub *EventHub, logger Logger) *ExtensionContainer {
	c := &ExtensionContainer{
		name:      name,
		hub:       hub,
		logger:    logger,
		standard:  NewSharedStateManager(),
		xdm:       NewSharedStateManager(),
		state:     StateInitializing,
		stopDrain: make(chan struct{}),
		drainDone: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// start transitions the container to RUNNING and launches its drain loop.
// Called once, after the extension factory succeeds.
func (c *ExtensionContainer) start(extension Extension) {
	c.mu.Lock()
	c.extension = extension
	c.state = StateRunning
	c.mu.Unlock()
	go c.drainLoop()
}

// enqueue appends a numberedEvent to the inbox (unbounded FIFO, §4.2) and
// wakes the drain loop. Called only by the hub's fan-out path.
func (c *ExtensionContainer) enqueue(ne numberedEvent) {
	c.mu.Lock()
	c.inbox = append(c.inbox, ne)
	c.mu.Unlock()
	c.cond.Broadcast()
}

// wake re-evaluates the head of the inbox without adding an event — used
// when a shared state this extension might be waiting on has changed
// (§4.2's "re-attempts when ... any shared state this extension reads is
// updated").
func (c *ExtensionContainer) wake() {
	c.cond.Broadcast()
}

// registerListener adds a listener entry, idempotent on exact (type,
// source) triples (handlers are not compared for equality). A map keyed
// on (type, source) would lose ordering, so a linear idempotency check
// keeps listener invocation order stable instead.
func (c *ExtensionContainer) registerListener(eventType, source string, handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.listeners {
		if l.EventType == eventType && l.Source == source {
			return
		}
	}
	c.listeners = append(c.listeners, ListenerEntry{EventType: eventType, Source: source, Handler: handler})
}

// setPaused toggles the PAUSED flag (§4.1 startEvents/stopEvents). Events
// continue to accumulate in the inbox while paused.
func (c *ExtensionContainer) setPaused(paused bool) {
	c.mu.Lock()
	if c.state == StateShutdown {
		c.mu.Unlock()
		return
	}
	changed := false
	if paused && c.state != StatePaused {
		c.state = StatePaused
		changed = true
	} else if !paused && c.state == StatePaused {
		c.state = StateRunning
		changed = true
	}
	c.mu.Unlock()
	c.cond.Broadcast()

	if changed && c.name != placeholderContainerName {
		if paused {
			c.hub.recordTransition(c.name, lifecycle.EventTypeExtensionPaused, lifecycle.PhaseRunning, lifecycle.StatusCompleted, "")
		} else {
			c.hub.recordTransition(c.name, lifecycle.EventTypeExtensionResumed, lifecycle.PhaseRunning, lifecycle.StatusCompleted, "")
		}
	}
}

// runState returns the container's current lifecycle state.
func (c *ExtensionContainer) runState() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// lastProcessed returns the highest event number this extension has fully
// committed (run all matching listeners for).
func (c *ExtensionContainer) lastProcessed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastProcessedEventNumber
}

// drainLoop is the container's single writer: it owns the inbox, listener
// invocation and readiness gate for the lifetime of the extension.
func (c *ExtensionContainer) drainLoop() {
	defer close(c.drainDone)
	for {
		c.mu.Lock()
		for {
			if c.state == StateShutdown {
				c.mu.Unlock()
				return
			}
			select {
			case <-c.stopDrain:
				c.mu.Unlock()
				return
			default:
			}
			if c.state == StatePaused || len(c.inbox) == 0 {
				c.cond.Wait()
				continue
			}
			head := c.inbox[0]
			if !c.safeReadyForEvent(head.event) {
				// Not ready: leave the head in place, wait for a stimulus
				// (new event or shared-state update via wake()), and
				// re-check. Never drop or reorder (§4.2).
				c.cond.Wait()
				continue
			}
			c.inbox = c.inbox[1:]
			c.mu.Unlock()
			c.deliver(head)
			c.mu.Lock()
			c.lastProcessedEventNumber = head.number
			c.mu.Unlock()
			break
		}
	}
}

// safeReadyForEvent calls the extension's readiness predicate, treating a
// panic as "not ready" and logging it — readiness errors must never corrupt
// ordering (§7).
func (c *ExtensionContainer) safeReadyForEvent(e Event) (ready bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("readyForEvent panicked, treating as not ready", "extension", c.name, "recovered", r)
			ready = false
		}
	}()
	return c.extension.ReadyForEvent(e)
}

// deliver invokes every matching listener, strictly serially, on this
// container's own goroutine (§5: "listener invocations within one
// extension are strictly serial; across extensions they may run in
// parallel").
func (c *ExtensionContainer) deliver(ne numberedEvent) {
	c.mu.Lock()
	matching := make([]ListenerEntry, 0, len(c.listeners))
	for _, l := range c.listeners {
		if l.matches(ne.event) {
			matching = append(matching, l)
		}
	}
	c.mu.Unlock()

	for _, l := range matching {
		c.safeInvoke(l, ne.event)
	}
}

func (c *ExtensionContainer) safeInvoke(l ListenerEntry, e Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("listener handler panicked", "extension", c.name, "eventType", e.Type(), "recovered", r)
		}
	}()
	l.Handler(e)
}

// shutdown transitions to SHUTDOWN, invokes OnExtensionUnregistered, and
// waits for the drain loop to exit.
func (c *ExtensionContainer) shutdown() {
	c.mu.Lock()
	if c.state == StateShutdown {
		c.mu.Unlock()
		return
	}
	c.state = StateShutdown
	ext := c.extension
	c.mu.Unlock()
	c.cond.Broadcast()
	close(c.stopDrain)
	<-c.drainDone

	if ext != nil {
		c.safeCallback(ext.OnExtensionUnregistered)
	}
}

func (c *ExtensionContainer) safeCallback(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("extension lifecycle callback panicked", "extension", c.name, "recovered", r)
		}
	}()
	fn()
}

// sharedStateManager returns the manager for the given kind.
func (c *ExtensionContainer) sharedStateManager(kind SharedStateKind) *SharedStateManager {
	if kind == KindXDM {
		return c.xdm
	}
	return c.standard
}
