// Package config loads and validates the hub's own runtime configuration:
// a single reflection-driven struct, HubConfig, fed from defaults, an
// optional file (YAML/JSON/TOML), and environment variables, in that
// priority order.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/golobby/cast"

	"github.com/GoCodeAlone/eventhub/feeders"
)

// HistoryBackend selects the event-history collaborator's storage.
type HistoryBackend string

const (
	HistoryBackendMemory HistoryBackend = "memory"
	HistoryBackendKafka  HistoryBackend = "kafka"
	HistoryBackendRedis  HistoryBackend = "redis"
)

// HubConfig is the hub's complete runtime configuration (SPEC_FULL.md
// "Configuration"). Zero value is not valid; use Load or DefaultHubConfig.
type HubConfig struct {
	// DefaultCompletionTimeout bounds a response listener's wait when the
	// caller does not specify its own (§4.4).
	DefaultCompletionTimeout time.Duration `json:"defaultcompletiontimeout" yaml:"defaultcompletiontimeout" toml:"defaultcompletiontimeout" env:"DEFAULT_COMPLETION_TIMEOUT" default:"5s"`

	// CompletionWorkers sizes the CompletionHandler's worker pool.
	CompletionWorkers int `json:"completionworkers" yaml:"completionworkers" toml:"completionworkers" env:"COMPLETION_WORKERS" default:"4" required:"true"`

	// PreprocessorsEnabled toggles whether the dispatcher's preprocessor
	// pipeline runs at all; disabling it is a debugging escape hatch.
	PreprocessorsEnabled bool `json:"preprocessorsenabled" yaml:"preprocessorsenabled" toml:"preprocessorsenabled" env:"PREPROCESSORS_ENABLED" default:"true"`

	// DebugServerAddr is the bind address for the read-only introspection
	// HTTP server. Empty disables it.
	DebugServerAddr string `json:"debugserveraddr" yaml:"debugserveraddr" toml:"debugserveraddr" env:"DEBUG_SERVER_ADDR" default:":9191"`

	// HistoryBackend selects the event-history collaborator's sink.
	HistoryBackend HistoryBackend `json:"historybackend" yaml:"historybackend" toml:"historybackend" env:"HISTORY_BACKEND" default:"memory"`

	// HistoryEvictionInterval is how often the history collaborator sweeps
	// its in-memory window for entries past their retention horizon.
	HistoryEvictionInterval time.Duration `json:"historyevictioninterval" yaml:"historyevictioninterval" toml:"historyevictioninterval" env:"HISTORY_EVICTION_INTERVAL" default:"30s"`

	// HistoryRetention is how long a recorded event is kept before eviction.
	HistoryRetention time.Duration `json:"historyretention" yaml:"historyretention" toml:"historyretention" env:"HISTORY_RETENTION" default:"10m"`

	// SharedStateSweepInterval is how often the hub sweeps shared-state
	// snapshots and event-number bookkeeping that every registered
	// extension has already processed past. Zero disables the sweep.
	SharedStateSweepInterval time.Duration `json:"sharedstatesweepinterval" yaml:"sharedstatesweepinterval" toml:"sharedstatesweepinterval" env:"SHARED_STATE_SWEEP_INTERVAL" default:"1m"`

	provenance []feeders.FieldPopulation
}

// FieldProvenance reports, for a config loaded from a YAML file, which
// fields the file actually populated (as opposed to left at their
// struct-tag default). Empty when loaded from JSON/TOML/env-only, since
// only YamlFeeder implements field tracking (see feeders.FieldTracker).
func (c *HubConfig) FieldProvenance() []feeders.FieldPopulation {
	return c.provenance
}

// mutableFields names the HubConfig fields a running hub may safely reload
// from disk without restarting. Everything else (wrapper type at the
// EventHub layer, CompletionWorkers, which sizes an already-started pool)
// requires a fresh process.
var mutableFields = map[string]bool{
	"DebugServerAddr":          true,
	"HistoryEvictionInterval":  true,
	"HistoryRetention":         true,
	"PreprocessorsEnabled":     true,
	"SharedStateSweepInterval": true,
}

// IsMutable reports whether fieldName may be changed by a runtime reload.
func IsMutable(fieldName string) bool {
	return mutableFields[fieldName]
}

// DefaultHubConfig returns a HubConfig populated entirely from its
// `default` struct tags, with no file or environment sources applied.
func DefaultHubConfig() (*HubConfig, error) {
	cfg := &HubConfig{}
	loader := NewLoader()
	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("applying hub config defaults: %w", err)
	}
	return cfg, nil
}

// Load builds a HubConfig from, in ascending precedence, struct-tag
// defaults, an optional YAML/TOML/JSON file at path (format inferred from
// extension), and the process environment (per-field `env` struct tags).
// An empty path skips the file source.
func Load(path string) (*HubConfig, error) {
	cfg := &HubConfig{}
	loader := NewLoader()
	ctx := context.Background()
	if err := applyDefaultsRecursive(cfg, ""); err != nil {
		return nil, fmt.Errorf("applying hub config defaults: %w", err)
	}

	if path != "" {
		source, err := fileFeeder(path)
		if err != nil {
			return nil, err
		}
		var tracker *feeders.DefaultFieldTracker
		if tf, ok := source.(fieldTrackingFeeder); ok {
			tracker = feeders.NewDefaultFieldTracker()
			tf.SetFieldTracker(tracker)
		}
		if err := source.Feed(cfg); err != nil {
			return nil, fmt.Errorf("loading hub config from %s: %w", path, err)
		}
		if tracker != nil {
			cfg.provenance = tracker.GetFieldPopulations()
		}
		loader.AddSource(&ConfigSource{Name: "file", Location: path, Priority: 10})
	}

	env := feeders.NewEnvFeeder()
	if err := env.Feed(cfg); err != nil {
		return nil, fmt.Errorf("loading hub config from environment: %w", err)
	}
	loader.AddSource(&ConfigSource{Name: "env", Location: "process environment", Priority: 20})

	if err := loader.Validate(ctx, cfg); err != nil {
		return nil, fmt.Errorf("validating hub config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// feeder is the subset of the feeders package's file-backed feeders
// (Json/Toml/Yaml) this package drives by extension.
type feeder interface {
	Feed(structure interface{}) error
}

// fieldTrackingFeeder is implemented only by feeders.YamlFeeder: JSON and
// TOML feed through golobby/config's own Json/Toml types, which don't
// expose a per-field hook.
type fieldTrackingFeeder interface {
	SetFieldTracker(tracker feeders.FieldTracker)
}

func fileFeeder(path string) (feeder, error) {
	switch ext(path) {
	case "json":
		f := feeders.NewJsonFeeder(path)
		return f, nil
	case "toml":
		f := feeders.NewTomlFeeder(path)
		return f, nil
	case "yaml", "yml":
		f := feeders.NewYamlFeeder(path)
		return f, nil
	default:
		return nil, fmt.Errorf("unrecognized config file extension: %s", path)
	}
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return ""
}

func validate(cfg *HubConfig) error {
	if cfg.CompletionWorkers <= 0 {
		return fmt.Errorf("completion workers must be positive, got %d", cfg.CompletionWorkers)
	}
	if cfg.DefaultCompletionTimeout <= 0 {
		return fmt.Errorf("default completion timeout must be positive, got %s", cfg.DefaultCompletionTimeout)
	}
	switch cfg.HistoryBackend {
	case HistoryBackendMemory, HistoryBackendKafka, HistoryBackendRedis, "":
	default:
		return fmt.Errorf("unknown history backend: %s", cfg.HistoryBackend)
	}
	return nil
}

// CoerceDuration uses golobby/cast to coerce loosely-typed source values
// (env vars and JSON/TOML scalars arrive as strings or float64) into the
// strongly-typed fields HubConfig expects.
func CoerceDuration(v interface{}) (time.Duration, error) {
	s, err := cast.ToString(v)
	if err != nil {
		return 0, fmt.Errorf("coercing duration: %w", err)
	}
	return time.ParseDuration(s)
}
