package eventhub

import (
	"sync"
	"time"
)

// ResponseFailReason enumerates why a ResponseHandler.Fail was invoked.
type ResponseFailReason int

const (
	// ReasonCallbackTimeout means no response arrived before the deadline.
	ReasonCallbackTimeout ResponseFailReason = iota
	// ReasonShutdown means the hub shut down with the completion still pending.
	ReasonShutdown
)

// ResponseHandler is invoked exactly once per registration: either Call with
// the matching response event, or Fail with the reason (§5, property 7).
type ResponseHandler interface {
	Call(response Event)
	Fail(reason ResponseFailReason)
}

// FuncResponseHandler adapts two plain functions to ResponseHandler.
type FuncResponseHandler struct {
	OnCall func(Event)
	OnFail func(ResponseFailReason)
}

func (f FuncResponseHandler) Call(response Event) {
	if f.OnCall != nil {
		f.OnCall(response)
	}
}

func (f FuncResponseHandler) Fail(reason ResponseFailReason) {
	if f.OnFail != nil {
		f.OnFail(reason)
	}
}

// completionEntry is one row of the trigger-id -> handler table.
type completionEntry struct {
	handler ResponseHandler
	timer   *time.Timer
	done    bool
}

// CompletionHandler correlates response events with the handler registered
// for their trigger, using time.AfterFunc deadlines, and dispatches handler
// invocation on a bounded worker pool (a chan func() workerPool pattern).
type CompletionHandler struct {
	mu      sync.Mutex
	entries map[string]*completionEntry
	work    chan func()
	logger  Logger
	wg      sync.WaitGroup
	closed  bool
}

// NewCompletionHandler builds a CompletionHandler with the given bounded
// worker pool size.
func NewCompletionHandler(workers int, logger Logger) *CompletionHandler {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = noopLogger{}
	}
	ch := &CompletionHandler{
		entries: make(map[string]*completionEntry),
		work:    make(chan func(), 256),
		logger:  logger,
	}
	for i := 0; i < workers; i++ {
		ch.wg.Add(1)
		go ch.worker()
	}
	return ch
}

func (ch *CompletionHandler) worker() {
	defer ch.wg.Done()
	for fn := range ch.work {
		ch.safeRun(fn)
	}
}

func (ch *CompletionHandler) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			ch.logger.Error("completion handler panicked", "recovered", r)
		}
	}()
	fn()
}

// ScheduleTimeoutHandler registers handler against triggerEventID with a
// deadline of timeout. If no matching response arrives first, Fail is
// invoked with ReasonCallbackTimeout exactly once.
func (ch *CompletionHandler) ScheduleTimeoutHandler(triggerEventID string, timeout time.Duration, handler ResponseHandler) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		ch.dispatch(func() { handler.Fail(ReasonShutdown) })
		return
	}
	entry := &completionEntry{handler: handler}
	entry.timer = time.AfterFunc(timeout, func() {
		ch.fireTimeout(triggerEventID)
	})
	ch.entries[triggerEventID] = entry
}

func (ch *CompletionHandler) fireTimeout(triggerEventID string) {
	ch.mu.Lock()
	entry, ok := ch.entries[triggerEventID]
	if !ok || entry.done {
		ch.mu.Unlock()
		return
	}
	entry.done = true
	delete(ch.entries, triggerEventID)
	ch.mu.Unlock()

	ch.dispatch(func() { entry.handler.Fail(ReasonCallbackTimeout) })
}

// Resolve is called by the preprocessor pipeline when an event's
// responseID matches a registered trigger. Cancels the timeout and
// dispatches handler.Call on the worker pool. Returns false if no handler
// was registered (or it already fired).
func (ch *CompletionHandler) Resolve(response Event) bool {
	triggerID := response.ResponseID()
	if triggerID == "" {
		return false
	}
	ch.mu.Lock()
	entry, ok := ch.entries[triggerID]
	if !ok || entry.done {
		ch.mu.Unlock()
		return false
	}
	entry.done = true
	delete(ch.entries, triggerID)
	ch.mu.Unlock()

	entry.timer.Stop()
	ch.dispatch(func() { entry.handler.Call(response) })
	return true
}

func (ch *CompletionHandler) dispatch(fn func()) {
	select {
	case ch.work <- fn:
	default:
		// Pool momentarily saturated; run on a fresh goroutine rather than
		// drop the callback (exactly one of Call/Fail still fires).
		go ch.safeRun(fn)
	}
}

// Shutdown cancels every outstanding deadline and fails each with
// ReasonShutdown, then stops accepting new registrations.
func (ch *CompletionHandler) Shutdown() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	pending := make([]*completionEntry, 0, len(ch.entries))
	for id, entry := range ch.entries {
		entry.done = true
		entry.timer.Stop()
		pending = append(pending, entry)
		delete(ch.entries, id)
	}
	ch.mu.Unlock()

	for _, entry := range pending {
		e := entry
		ch.dispatch(func() { e.handler.Fail(ReasonShutdown) })
	}
	// The worker pool is intentionally left running: a registration racing
	// the shutdown lock could still enqueue a Fail after we stop draining
	// "pending" above, and closing the channel under that race would panic
	// on send. Workers exit with the process; this is a one-time hub
	// teardown, not a per-request resource.
}
