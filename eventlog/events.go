package eventlog

import "time"

// LogEntry is the normalized record handed to every OutputTarget, derived
// from a CloudEvent the logger observed.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event type constants for eventlogger module events.
// Following CloudEvents specification reverse domain notation.
const (
	// Logger lifecycle events
	EventTypeLoggerStarted = "com.eventhub.eventlog.started"
	EventTypeLoggerStopped = "com.eventhub.eventlog.stopped"

	// Event processing events
	EventTypeEventReceived  = "com.eventhub.eventlog.event.received"
	EventTypeEventProcessed = "com.eventhub.eventlog.event.processed"
	EventTypeEventDropped   = "com.eventhub.eventlog.event.dropped"

	// Buffer events
	EventTypeBufferFull = "com.eventhub.eventlog.buffer.full"

	// Output events
	EventTypeOutputSuccess = "com.eventhub.eventlog.output.success"
	EventTypeOutputError   = "com.eventhub.eventlog.output.error"

	// Configuration events
	EventTypeConfigLoaded     = "com.eventhub.eventlog.config.loaded"
	EventTypeOutputRegistered = "com.eventhub.eventlog.output.registered"
)
