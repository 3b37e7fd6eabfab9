package eventhub

// SharedStateStatus classifies a shared-state snapshot or query result.
type SharedStateStatus int

const (
	// StatusNone means no snapshot exists at or before the requested version.
	StatusNone SharedStateStatus = iota
	// StatusPending means a snapshot was reserved but not yet resolved.
	StatusPending
	// StatusSet means a snapshot has an immutable resolved payload.
	StatusSet
)

func (s SharedStateStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSet:
		return "SET"
	default:
		return "NONE"
	}
}

// SharedStateKind distinguishes the two shared-state managers every
// extension owns. Per the resolved Open Question (DESIGN.md), STANDARD and
// XDM are two entirely separate SharedStateManager instances, never a
// shared lookup table keyed by kind.
type SharedStateKind int

const (
	KindStandard SharedStateKind = iota
	KindXDM
)

// SharedStateResolution selects whether a read may return a PENDING result.
type SharedStateResolution int

const (
	// ResolutionAny accepts either PENDING or SET as the newest snapshot.
	ResolutionAny SharedStateResolution = iota
	// ResolutionLastSet skips PENDING snapshots, returning the newest SET one.
	ResolutionLastSet
)

// VersionLatest is the sentinel meaning "newest available", used when a read
// is not anchored to a specific event.
const VersionLatest int64 = -1

// SharedStateResult is the outcome of a shared-state read.
type SharedStateResult struct {
	Status SharedStateStatus
	Value  map[string]any
}

// snapshot is one append-only entry in a SharedStateManager's version list.
type snapshot struct {
	version int64
	status  SharedStateStatus
	data    map[string]any
}

// SharedStateManager holds the ordered, versioned snapshot list for one
// (extensionName, kind) pair. It is exclusively owned by the hub writer
// (§5); the manager itself enforces only the append-only/monotone-version
// invariants, relying on the caller for single-writer discipline.
type SharedStateManager struct {
	// snapshots is kept sorted ascending by version; appends are O(1)
	// amortized since versions only increase.
	snapshots []snapshot
}

// NewSharedStateManager constructs an empty manager.
func NewSharedStateManager() *SharedStateManager {
	return &SharedStateManager{}
}

// IsEmpty reports whether any snapshot has ever been appended.
func (m *SharedStateManager) IsEmpty() bool {
	return len(m.snapshots) == 0
}

// Clear drops all snapshots.
func (m *SharedStateManager) Clear() {
	m.snapshots = nil
}

// EvictBefore drops snapshots that can no longer be the answer to any future
// Resolve call once every extension has processed past floor: it keeps every
// snapshot with version >= floor, plus the single newest snapshot with
// version < floor (so a read anchored anywhere in [keptVersion, floor) still
// resolves to the right value). Returns the number of snapshots dropped.
func (m *SharedStateManager) EvictBefore(floor int64) int {
	if len(m.snapshots) == 0 {
		return 0
	}
	keepFrom := 0
	for i, s := range m.snapshots {
		if s.version >= floor {
			break
		}
		keepFrom = i
	}
	if keepFrom == 0 {
		return 0
	}
	dropped := keepFrom
	m.snapshots = m.snapshots[keepFrom:]
	return dropped
}

func (m *SharedStateManager) lastVersion() (int64, bool) {
	if len(m.snapshots) == 0 {
		return 0, false
	}
	return m.snapshots[len(m.snapshots)-1].version, true
}

// canAppend reports whether version is strictly greater than the last
// appended version, per the monotonicity invariant (§3).
func (m *SharedStateManager) canAppend(version int64) bool {
	last, ok := m.lastVersion()
	if !ok {
		return true
	}
	return version > last
}

// SetState appends a SET snapshot at version. Returns false (no-op) if
// version is not strictly greater than the last appended version.
func (m *SharedStateManager) SetState(version int64, data map[string]any) bool {
	if !m.canAppend(version) {
		return false
	}
	m.snapshots = append(m.snapshots, snapshot{version: version, status: StatusSet, data: cloneData(data)})
	return true
}

// SetPendingState appends a PENDING snapshot at version. Same ordering rule
// as SetState.
func (m *SharedStateManager) SetPendingState(version int64) bool {
	if !m.canAppend(version) {
		return false
	}
	m.snapshots = append(m.snapshots, snapshot{version: version, status: StatusPending})
	return true
}

// UpdatePendingState converts the PENDING snapshot at version to SET.
// Returns false if no PENDING snapshot exists at that exact version, or it
// has already transitioned to SET — this is the resolver's one-shot guard
// (§3 invariant: "a PENDING snapshot may transition to SET exactly once").
func (m *SharedStateManager) UpdatePendingState(version int64, data map[string]any) bool {
	for i := range m.snapshots {
		if m.snapshots[i].version == version {
			if m.snapshots[i].status != StatusPending {
				return false
			}
			m.snapshots[i].status = StatusSet
			m.snapshots[i].data = cloneData(data)
			return true
		}
	}
	return false
}

// Resolve returns the newest snapshot with version <= v, regardless of
// status. If v == VersionLatest, the newest snapshot overall is returned.
func (m *SharedStateManager) Resolve(v int64) SharedStateResult {
	return m.resolve(v, false)
}

// ResolveLastSet returns the newest SET snapshot with version <= v.
func (m *SharedStateManager) ResolveLastSet(v int64) SharedStateResult {
	return m.resolve(v, true)
}

func (m *SharedStateManager) resolve(v int64, requireSet bool) SharedStateResult {
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		s := m.snapshots[i]
		if v != VersionLatest && s.version > v {
			continue
		}
		if requireSet && s.status != StatusSet {
			continue
		}
		return SharedStateResult{Status: s.status, Value: cloneData(s.data)}
	}
	return SharedStateResult{Status: StatusNone}
}
