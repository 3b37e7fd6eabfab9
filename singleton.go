package eventhub

import "sync"

// defaultHub backs the legacy package-level accessor (§9: "the singleton is
// a thin top-level accessor used only by the legacy API surface"). Tests and
// new integrations should construct their own *EventHub via NewEventHub
// instead of relying on this.
var (
	defaultHubOnce sync.Once
	defaultHubVal  *EventHub
)

// Default returns the process-wide hub instance, constructing it with no
// options on first use. Provided only for legacy call sites that predate
// explicit hub construction.
func Default() *EventHub {
	defaultHubOnce.Do(func() {
		defaultHubVal = NewEventHub()
	})
	return defaultHubVal
}
