// Package history implements the event-history collaborator (SPEC_FULL.md
// §6, eventhub.EventHistory): an engine-selectable design (memory/Kafka/Redis)
// with a delivery-stats shape, recording already-dispatched hub events for later
// replay/audit instead of routing live pub/sub traffic.
package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/GoCodeAlone/eventhub"
)

// Record is one durable entry in the history window: the event plus the
// canonical fingerprint of its type, mask and data, used as the Kafka
// message key. Engine.RecordEvent leaves Number at 0, since EventHistory
// does not pass the hub-assigned event number.
type Record struct {
	Number    int64
	EventType string
	Source    string
	Mask      []string
	Data      map[string]any
	Recorded  time.Time
	Fingerprint uint64
}

// Sink persists Records and answers HistoryQuery lookups. Memory, Kafka and
// Redis backends implement it; Config.Backend selects which one Engine
// builds.
type Sink interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q eventhub.HistoryQuery) ([]Record, error)
	Evict(ctx context.Context, olderThan time.Time) int
	Close() error
}

// Config parameterizes the history collaborator, trimmed to the fields a
// history sink needs.
type Config struct {
	Backend           string // "memory" | "kafka" | "redis"
	RetentionWindow   time.Duration
	EvictionInterval  time.Duration
	KafkaBrokers      []string
	KafkaTopic        string
	RedisAddr         string
	RedisDB           int
}

// Engine is the concrete eventhub.EventHistory implementation: it fans
// RecordEvent/GetEvents calls out to a Sink and tracks delivered/dropped
// counters for the Prometheus exporter.
type Engine struct {
	cfg    Config
	sink   Sink
	logger eventhub.Logger

	mu        sync.Mutex
	recorded  uint64
	dropped   uint64

	stopEvict chan struct{}
	evictDone chan struct{}
}

// NewEngine builds a history.Engine backed by the Sink named in cfg.Backend.
func NewEngine(cfg Config, logger eventhub.Logger) (*Engine, error) {
	if logger == nil {
		if zl, err := eventhub.NewZapLogger(); err == nil {
			logger = zl
		} else {
			logger = eventhub.NewNoopLogger()
		}
	}
	var sink Sink
	var err error
	switch cfg.Backend {
	case "", "memory":
		sink = newMemorySink(cfg.RetentionWindow)
	case "kafka":
		sink, err = newKafkaSink(cfg)
	case "redis":
		sink, err = newRedisSink(cfg)
	default:
		return nil, fmt.Errorf("history: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("history: building %s sink: %w", cfg.Backend, err)
	}

	e := &Engine{cfg: cfg, sink: sink, logger: logger}
	if cfg.EvictionInterval > 0 {
		e.stopEvict = make(chan struct{})
		e.evictDone = make(chan struct{})
		go e.evictLoop()
	}
	return e, nil
}

// RecordEvent implements eventhub.EventHistory. It is called by the hub
// writer in fire-and-forget style; cb reports success/failure but the hub
// never blocks on it (§6).
func (e *Engine) RecordEvent(event eventhub.Event, cb func(ok bool)) {
	rec := Record{
		EventType: event.Type(),
		Source:    event.Source(),
		Mask:      event.Mask(),
		Data:      event.Data(),
		Recorded:  time.Now(),
	}
	rec.Fingerprint = fingerprint(rec.EventType, rec.Mask, rec.Data)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := e.sink.Append(ctx, rec)

	e.mu.Lock()
	if err != nil {
		e.dropped++
	} else {
		e.recorded++
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("history: failed to record event", "type", rec.EventType, "error", err)
	}
	if cb != nil {
		cb(err == nil)
	}
}

// GetEvents implements eventhub.EventHistory. handler is called once with
// the total number of matching records across all queries; enforceOrder
// sorts the results by Record.Number (ascending) before the count is
// reported. Records written by RecordEvent all carry Number 0.
func (e *Engine) GetEvents(queries []eventhub.HistoryQuery, enforceOrder bool, handler func(count int)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var all []Record
	for _, q := range queries {
		recs, err := e.sink.Query(ctx, q)
		if err != nil {
			e.logger.Error("history: query failed", "error", err)
			continue
		}
		all = append(all, recs...)
	}
	if enforceOrder {
		sort.Slice(all, func(i, j int) bool { return all[i].Number < all[j].Number })
	}
	if handler != nil {
		handler(len(all))
	}
}

// Stats returns cumulative recorded/dropped counts for the Prometheus
// exporter.
func (e *Engine) Stats() (recorded, dropped uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recorded, e.dropped
}

func (e *Engine) evictLoop() {
	defer close(e.evictDone)
	ticker := time.NewTicker(e.cfg.EvictionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopEvict:
			return
		case <-ticker.C:
			if e.cfg.RetentionWindow <= 0 {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			n := e.sink.Evict(ctx, time.Now().Add(-e.cfg.RetentionWindow))
			cancel()
			if n > 0 {
				e.logger.Debug("history: evicted stale records", "count", n)
			}
		}
	}
}

// Close stops the eviction loop and the underlying sink.
func (e *Engine) Close() error {
	if e.stopEvict != nil {
		close(e.stopEvict)
		<-e.evictDone
	}
	return e.sink.Close()
}

// fingerprint computes a canonical xxhash of an event's type, mask and
// data, iterating map keys in sorted order so the fingerprint is stable
// regardless of Go's randomized map iteration (the Kafka sink uses it as
// the message key).
func fingerprint(eventType string, mask []string, data map[string]any) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(eventType)
	_, _ = h.WriteString("|")
	for _, m := range mask {
		_, _ = h.WriteString(m)
		_, _ = h.WriteString(",")
	}
	_, _ = h.WriteString("|")

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = h.WriteString(k)
		_, _ = h.WriteString("=")
		_, _ = fmt.Fprintf(h, "%v", data[k])
		_, _ = h.WriteString(";")
	}
	return h.Sum64()
}
