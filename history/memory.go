package history

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/GoCodeAlone/eventhub"
)

// memorySink is the default in-process Sink: a mutex-guarded slice plus an LRU
// index of recently appended fingerprints. Append stores every record,
// repeated identical events included; nothing reads the index back.
type memorySink struct {
	mu      sync.RWMutex
	records []Record
	seen    *lru.Cache[uint64, struct{}]
	window  time.Duration
}

func newMemorySink(window time.Duration) *memorySink {
	seen, _ := lru.New[uint64, struct{}](4096)
	return &memorySink{seen: seen, window: window}
}

func (m *memorySink) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	m.seen.Add(rec.Fingerprint, struct{}{})
	return nil
}

func (m *memorySink) Query(_ context.Context, q eventhub.HistoryQuery) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, rec := range m.records {
		if !matches(rec, q) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memorySink) Evict(_ context.Context, olderThan time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	evicted := 0
	for _, rec := range m.records {
		if rec.Recorded.Before(olderThan) {
			evicted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return evicted
}

func (m *memorySink) Close() error { return nil }

func matches(rec Record, q eventhub.HistoryQuery) bool {
	if q.EventType != "" && q.EventType != rec.EventType {
		return false
	}
	if q.Source != "" && q.Source != rec.Source {
		return false
	}
	if q.FromNum != 0 && rec.Number < q.FromNum {
		return false
	}
	if q.ToNum != 0 && rec.Number > q.ToNum {
		return false
	}
	if len(q.Mask) > 0 && !maskOverlaps(q.Mask, rec.Mask) {
		return false
	}
	return true
}

func maskOverlaps(want, have []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
