package eventhub

import "go.uber.org/zap"

// Logger defines the interface used throughout the hub for structured
// logging with key-value pairs. Every writer domain (hub, dispatcher,
// per-extension, completion workers) logs through this interface so the
// host application controls format and destination.
//
//	logger.Info("extension registered", "name", name, "version", version)
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// zapLogger is the default Logger, backed by zap's sugared logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a Logger backed by a production zap configuration.
func NewZapLogger() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: z.Sugar()}, nil
}

// NewZapLoggerFromBase wraps an already-constructed *zap.Logger.
func NewZapLoggerFromBase(z *zap.Logger) Logger {
	return &zapLogger{sugar: z.Sugar()}
}

func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// noopLogger discards everything; used as a safe default when no Logger is supplied.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// NewNoopLogger returns a Logger that discards everything, for callers that
// want an explicit fallback without depending on zap succeeding.
func NewNoopLogger() Logger { return noopLogger{} }
