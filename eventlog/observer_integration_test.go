package eventlog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GoCodeAlone/eventhub"
	"github.com/GoCodeAlone/eventhub/eventlog"
)

// TestLogger_ObservesHubLifecycleEvents wires an eventlog.Logger onto a real
// EventHub's Subject and asserts that a hub lifecycle CloudEvent (emitted by
// Start) actually reaches the configured file output target.
func TestLogger_ObservesHubLifecycleEvents(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.log")

	cfg := eventlog.EventLoggerConfig{
		Enabled:         true,
		LogLevel:        "INFO",
		Format:          "json",
		FlushInterval:   time.Second,
		IncludeMetadata: true,
		OutputTargets: []eventlog.OutputTargetConfig{
			{
				Type:   "file",
				Level:  "INFO",
				Format: "json",
				File:   &eventlog.FileTargetConfig{Path: logPath},
			},
		},
	}

	logger, err := eventlog.NewLogger("integration-test", cfg, eventhub.NewNoopLogger())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	hub := eventhub.NewEventHub()
	if err := hub.Subject().RegisterObserver(logger, eventhub.EventTypeHubStarted); err != nil {
		t.Fatalf("RegisterObserver: %v", err)
	}
	if err := logger.Start(t.Context()); err != nil {
		t.Fatalf("logger.Start: %v", err)
	}
	defer func() { _ = logger.Stop(t.Context()) }()

	hub.Start()
	if err := logger.Stop(t.Context()); err != nil {
		t.Fatalf("logger.Stop: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected the hub.started event to be written to the log file, got nothing")
	}

	var entry eventlog.LogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("unmarshaling log entry: %v (content: %s)", err, data)
	}
	if entry.Type != eventhub.EventTypeHubStarted {
		t.Errorf("expected logged event type %q, got %q", eventhub.EventTypeHubStarted, entry.Type)
	}
}

// TestLogger_FiltersUnregisteredEventTypes confirms that an observer
// registered for one event type is not notified of others.
func TestLogger_FiltersUnregisteredEventTypes(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.log")

	cfg := eventlog.EventLoggerConfig{
		Enabled:       true,
		LogLevel:      "INFO",
		Format:        "json",
		FlushInterval: time.Second,
		OutputTargets: []eventlog.OutputTargetConfig{
			{Type: "file", Level: "INFO", Format: "json", File: &eventlog.FileTargetConfig{Path: logPath}},
		},
	}

	logger, err := eventlog.NewLogger("integration-test-filter", cfg, eventhub.NewNoopLogger())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	hub := eventhub.NewEventHub()
	if err := hub.Subject().RegisterObserver(logger, eventhub.EventTypeExtensionRegistered); err != nil {
		t.Fatalf("RegisterObserver: %v", err)
	}
	if err := logger.Start(t.Context()); err != nil {
		t.Fatalf("logger.Start: %v", err)
	}
	defer func() { _ = logger.Stop(t.Context()) }()

	hub.Start()
	if err := logger.Stop(t.Context()); err != nil {
		t.Fatalf("logger.Stop: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected no entries for an unregistered event type, got: %s", data)
	}
}
