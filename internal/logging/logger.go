// Package logging provides structured logging for the KERF algorithm
// service, backed by zap.
package logging

import (
	"context"

	"go.uber.org/zap"
)

// Logger wraps a zap.Logger behind a map-based field API so callers
// don't depend on zap directly.
type Logger struct {
	zl *zap.Logger
}

// NewFromZap wraps an existing zap.Logger.
func NewFromZap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl}
}

// Zap exposes the underlying zap.Logger for integrations that need it.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// WithFields returns a new Logger carrying the given fields on every
// subsequent entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{zl: l.zl.With(zapFields(fields)...)}
}

// WithField returns a new Logger with a single additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithError returns a new Logger with the error field set.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With(zap.Error(err))}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.zl.Debug(msg, collect(fields)...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.zl.Info(msg, collect(fields)...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.zl.Warn(msg, collect(fields)...)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.zl.Error(msg, collect(fields)...)
}

// Fatal logs a message at fatal level, then exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.zl.Fatal(msg, collect(fields)...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func collect(fields []map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	return zapFields(fields[0])
}

func zapFields(fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

type ctxLoggerKey struct{}

// FromContext returns the request-scoped logger from ctx, or a no-op
// logger when none was attached.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{zl: zap.NewNop()}
}

// WithContext returns a new context carrying the logger.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, l)
}
