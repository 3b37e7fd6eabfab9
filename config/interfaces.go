// Package config loads and reloads the hub's own runtime configuration.
package config

import (
	"context"
	"time"
)

// ConfigReloader is the hot-reload contract HubConfig's file watcher
// implements: start/stop watching a source, report whether it currently is.
type ConfigReloader interface {
	// StartWatch begins watching configuration sources for changes.
	StartWatch(ctx context.Context, callback ReloadCallback) error

	// StopWatch stops watching configuration sources.
	StopWatch(ctx context.Context) error

	// IsWatching reports whether a watch is currently active.
	IsWatching() bool
}

// ConfigSource records where one piece of HubConfig came from, for
// introspection through Loader.Sources.
type ConfigSource struct {
	Name       string            `json:"name"`     // e.g., "file", "env"
	Location   string            `json:"location"` // file path, or "process environment"
	Priority   int               `json:"priority"` // higher priority overrides lower
	Loaded     bool              `json:"loaded"`
	LastLoaded *time.Time        `json:"last_loaded,omitempty"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ReloadCallback is invoked with the set of mutable-field changes a reload
// picked up. A reload that touches only immutable fields never calls back.
type ReloadCallback func(ctx context.Context, changes []*ConfigChange) error

// ConfigChange describes one field of HubConfig changing value across a
// reload.
type ConfigChange struct {
	FieldPath string      `json:"field_path"`
	OldValue  interface{} `json:"old_value"`
	NewValue  interface{} `json:"new_value"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
}
