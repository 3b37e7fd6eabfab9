// Package health aggregates per-extension run-state into a single
// read-only diagnostic snapshot. A pluggable HealthChecker-on-an-interval
// design would be overkill here — the hub already knows every extension's
// RunState and lastProcessedEventNumber, so aggregation here is a pure
// reduction over the hub's own ExtensionRecords, not a polling subsystem.
package health

import "time"

// Status is the per-extension or overall health classification.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ExtensionSnapshot is the minimal view the aggregator needs; callers
// (eventhub.ExtensionRecord) already carry this shape.
type ExtensionSnapshot struct {
	Name                     string
	RunState                 string // "INITIALIZING" | "RUNNING" | "PAUSED" | "SHUTDOWN"
	LastProcessedEventNumber int64
}

// ExtensionStatus is one extension's classified entry in an AggregatedStatus.
type ExtensionStatus struct {
	Name                     string
	Status                   Status
	LastProcessedEventNumber int64
}

// AggregatedStatus is the whole-hub diagnostic snapshot (SPEC_FULL.md §3).
type AggregatedStatus struct {
	Overall    Status
	Extensions []ExtensionStatus
	Timestamp  time.Time
}

// Aggregator reduces extension run-states into an AggregatedStatus.
type Aggregator struct{}

// NewAggregator constructs an Aggregator. It holds no state of its own: the
// hub is the source of truth for run-states, so there is nothing to cache.
func NewAggregator() *Aggregator { return &Aggregator{} }

// Aggregate classifies every extension and rolls the results up into an
// overall status: UNHEALTHY if any extension is SHUTDOWN unexpectedly
// (present in the snapshot means it was still registered moments ago),
// DEGRADED if any is PAUSED or INITIALIZING, else HEALTHY.
func (a *Aggregator) Aggregate(snapshots []ExtensionSnapshot) AggregatedStatus {
	out := AggregatedStatus{
		Overall:    StatusHealthy,
		Extensions: make([]ExtensionStatus, 0, len(snapshots)),
		Timestamp:  time.Now(),
	}
	for _, s := range snapshots {
		st := classify(s.RunState)
		out.Extensions = append(out.Extensions, ExtensionStatus{
			Name:                     s.Name,
			Status:                   st,
			LastProcessedEventNumber: s.LastProcessedEventNumber,
		})
		out.Overall = worse(out.Overall, st)
	}
	return out
}

func classify(runState string) Status {
	switch runState {
	case "RUNNING":
		return StatusHealthy
	case "PAUSED", "INITIALIZING":
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

func worse(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
