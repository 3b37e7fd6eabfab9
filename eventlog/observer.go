package eventlog

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/GoCodeAlone/eventhub"
)

// Logger is a concrete eventhub.Observer: it normalizes every CloudEvent it
// is notified of into a LogEntry and fans the entry out to each configured
// OutputTarget (console/file/syslog). Register it on a hub's Subject via
// hub.Subject().RegisterObserver(logger, eventTypes...) to have the hub's
// CloudEvents notifications (extension lifecycle, shared-state changes)
// actually land somewhere durable.
type Logger struct {
	id      string
	cfg     EventLoggerConfig
	targets []OutputTarget
	filters map[string]struct{}
}

// NewLogger builds a Logger from cfg, constructing one OutputTarget per
// entry in cfg.OutputTargets. id is the value returned by ObserverID, used
// by the hub's Subject to key the registration.
func NewLogger(id string, cfg EventLoggerConfig, logger eventhub.Logger) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = eventhub.NewNoopLogger()
	}

	targets := make([]OutputTarget, 0, len(cfg.OutputTargets))
	for _, tc := range cfg.OutputTargets {
		target, err := NewOutputTarget(tc, logger)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	filters := make(map[string]struct{}, len(cfg.EventTypeFilters))
	for _, t := range cfg.EventTypeFilters {
		filters[t] = struct{}{}
	}

	return &Logger{id: id, cfg: cfg, targets: targets, filters: filters}, nil
}

// ObserverID implements eventhub.Observer.
func (l *Logger) ObserverID() string { return l.id }

// Start starts every configured output target.
func (l *Logger) Start(ctx context.Context) error {
	for _, target := range l.targets {
		if err := target.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop flushes and stops every configured output target, returning the
// first error encountered (if any) after attempting all of them.
func (l *Logger) Stop(ctx context.Context) error {
	var firstErr error
	for _, target := range l.targets {
		if err := target.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := target.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OnEvent implements eventhub.Observer: it converts event into a LogEntry
// and writes it to every configured target, subject to cfg.Enabled and
// cfg.EventTypeFilters.
func (l *Logger) OnEvent(_ context.Context, event cloudevents.Event) error {
	if !l.cfg.Enabled {
		return nil
	}
	if len(l.filters) > 0 {
		if _, ok := l.filters[event.Type()]; !ok {
			return nil
		}
	}

	entry := l.toLogEntry(event)
	var firstErr error
	for _, target := range l.targets {
		if err := target.WriteEvent(entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *Logger) toLogEntry(event cloudevents.Event) *LogEntry {
	entry := &LogEntry{
		Timestamp: event.Time(),
		Level:     "INFO",
		Type:      event.Type(),
		Source:    event.Source(),
	}

	var data interface{}
	if err := event.DataAs(&data); err == nil {
		entry.Data = data
	}

	if l.cfg.IncludeMetadata {
		entry.Metadata = map[string]interface{}{"id": event.ID()}
	}

	return entry
}
