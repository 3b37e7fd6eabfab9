package eventlog

import (
	"time"
)

// EventLoggerConfig holds configuration for the event logger module.
type EventLoggerConfig struct {
	// Enabled determines if event logging is active
	Enabled bool `yaml:"enabled" default:"true" desc:"Enable event logging"`

	// LogLevel is validated (DEBUG, INFO, WARN, ERROR) but not used for
	// filtering; each output target filters by its own Level.
	LogLevel string `yaml:"logLevel" default:"INFO" desc:"Minimum log level for events"`

	// Format specifies the output format (text, json, structured)
	Format string `yaml:"format" default:"structured" desc:"Log output format"`

	// OutputTargets specifies where to output logs
	OutputTargets []OutputTargetConfig `yaml:"outputTargets" desc:"Output targets for event logs"`

	// EventTypeFilters allows filtering which event types to log
	EventTypeFilters []string `yaml:"eventTypeFilters" desc:"Event types to log (empty = all events)"`

	// BufferSize is not read: Logger writes each event to its targets as it
	// arrives, without a buffer.
	BufferSize int `yaml:"bufferSize" default:"100" desc:"Buffer size for async event processing"`

	// FlushInterval must be positive to pass Validate; Logger does not
	// otherwise read it.
	FlushInterval time.Duration `yaml:"flushInterval" default:"5s" desc:"Interval to flush buffered events"`

	// IncludeMetadata determines if event metadata should be logged
	IncludeMetadata bool `yaml:"includeMetadata" default:"true" desc:"Include event metadata in logs"`

	// IncludeStackTrace, StartupSync, ShutdownEmitStopped and
	// ShutdownDrainTimeout are accepted in configuration but not read by
	// Logger, which emits no startup/stop operational events and keeps no
	// queue to drain.
	IncludeStackTrace bool `yaml:"includeStackTrace" default:"false" desc:"Include stack traces for error events"`

	StartupSync bool `yaml:"startupSync" default:"false" desc:"Emit startup operational events synchronously (no artificial sleep)"`

	ShutdownEmitStopped bool `yaml:"shutdownEmitStopped" default:"true" desc:"Emit logger stopped operational event on Stop"`

	ShutdownDrainTimeout time.Duration `yaml:"shutdownDrainTimeout" default:"2s" desc:"Maximum time to wait for draining event queue on Stop. Zero or negative = unlimited wait."`
}

// OutputTargetConfig configures a specific output target for event logs.
type OutputTargetConfig struct {
	// Type specifies the output type (console, file, syslog)
	Type string `yaml:"type" default:"console" desc:"Output target type"`

	// Level allows different log levels per target
	Level string `yaml:"level" default:"INFO" desc:"Minimum log level for this target"`

	// Format allows different formats per target
	Format string `yaml:"format" default:"structured" desc:"Log format for this target"`

	// Configuration specific to the target type
	Console *ConsoleTargetConfig `yaml:"console,omitempty" desc:"Console output configuration"`
	File    *FileTargetConfig    `yaml:"file,omitempty" desc:"File output configuration"`
	Syslog  *SyslogTargetConfig  `yaml:"syslog,omitempty" desc:"Syslog output configuration"`
}

// ConsoleTargetConfig configures console output.
type ConsoleTargetConfig struct {
	// UseColor enables colored output for console
	UseColor bool `yaml:"useColor" default:"true" desc:"Enable colored console output"`

	// Timestamps determines if timestamps should be included
	Timestamps bool `yaml:"timestamps" default:"true" desc:"Include timestamps in console output"`
}

// FileTargetConfig configures file output.
type FileTargetConfig struct {
	// Path specifies the log file path
	Path string `yaml:"path" required:"true" desc:"Path to log file"`

	// MaxSize, MaxBackups, MaxAge and Compress describe a rotation policy;
	// FileTarget does not rotate and does not read them.
	MaxSize int `yaml:"maxSize" default:"100" desc:"Maximum file size in MB before rotation"`

	// MaxBackups specifies the maximum number of backup files to keep
	MaxBackups int `yaml:"maxBackups" default:"5" desc:"Maximum number of backup files"`

	// MaxAge specifies the maximum age in days to keep log files
	MaxAge int `yaml:"maxAge" default:"30" desc:"Maximum age in days to keep log files"`

	// Compress determines if rotated logs should be compressed
	Compress bool `yaml:"compress" default:"true" desc:"Compress rotated log files"`
}

// SyslogTargetConfig configures syslog output.
type SyslogTargetConfig struct {
	// Network specifies the network type (tcp, udp, unix)
	Network string `yaml:"network" default:"unix" desc:"Network type for syslog connection"`

	// Address specifies the syslog server address
	Address string `yaml:"address" default:"" desc:"Syslog server address"`

	// Tag specifies the syslog tag
	Tag string `yaml:"tag" default:"modular" desc:"Syslog tag"`

	// Facility specifies the syslog facility
	Facility string `yaml:"facility" default:"user" desc:"Syslog facility"`
}

// Validate checks EventLoggerConfig for invalid log levels, formats, and
// output-target configuration.
func (c *EventLoggerConfig) Validate() error {
	// Validate log level
	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	if !validLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	// Validate format
	validFormats := map[string]bool{
		"text": true, "json": true, "structured": true,
	}
	if !validFormats[c.Format] {
		return ErrInvalidFormat
	}

	// Validate flush interval
	if c.FlushInterval <= 0 {
		return ErrInvalidFlushInterval
	}

	// Validate output targets
	for i, target := range c.OutputTargets {
		if err := target.Validate(); err != nil {
			return NewOutputTargetError(i, err)
		}
	}

	return nil
}

// Validate validates an OutputTargetConfig.
func (o *OutputTargetConfig) Validate() error {
	// Validate type
	validTypes := map[string]bool{
		"console": true, "file": true, "syslog": true,
	}
	if !validTypes[o.Type] {
		return ErrInvalidOutputType
	}

	// Validate level
	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	if !validLevels[o.Level] {
		return ErrInvalidLogLevel
	}

	// Validate format
	validFormats := map[string]bool{
		"text": true, "json": true, "structured": true,
	}
	if !validFormats[o.Format] {
		return ErrInvalidFormat
	}

	// Type-specific validation
	switch o.Type {
	case "file":
		if o.File == nil {
			return ErrMissingFileConfig
		}
		if o.File.Path == "" {
			return ErrMissingFilePath
		}
	case "syslog":
		if o.Syslog == nil {
			return ErrMissingSyslogConfig
		}
		validNetworks := map[string]bool{
			"tcp": true, "udp": true, "unix": true,
		}
		if !validNetworks[o.Syslog.Network] {
			return ErrInvalidSyslogNetwork
		}
	}

	return nil
}
