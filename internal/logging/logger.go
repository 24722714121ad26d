package logging

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
)

// Level controls which messages are written
type Level int32

const (
	LevelInfo Level = iota
	LevelDebug
)

var level atomic.Int32

// SetLevel sets the process-wide log level from its config name ("info", "debug")
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level.Store(int32(LevelDebug))
	default:
		level.Store(int32(LevelInfo))
	}
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request ID used in log lines
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID extracts the request ID from ctx, or "" if none is set
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides structured logging for services
type Logger struct {
	requestID string
}

// New creates a logger with request context
func New(ctx context.Context) *Logger {
	requestID := "unknown"
	if ctx != nil {
		if rid := RequestID(ctx); rid != "" {
			requestID = rid
		}
	}
	return &Logger{requestID: requestID}
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error) {
	log.Printf("[error] request_id=%s operation=%s error=%v", l.requestID, operation, err)
}

// LogErrorf logs a formatted error with context
func (l *Logger) LogErrorf(operation string, format string, args ...interface{}) {
	log.Printf("[error] request_id=%s operation=%s "+format, append([]interface{}{l.requestID, operation}, args...)...)
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	log.Printf("[info] request_id=%s operation=%s "+format, append([]interface{}{l.requestID, operation}, args...)...)
}

// LogWarnf logs a formatted warning with context
func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	log.Printf("[warn] request_id=%s operation=%s "+format, append([]interface{}{l.requestID, operation}, args...)...)
}

// LogDebugf logs only when the debug level is enabled
func (l *Logger) LogDebugf(operation string, format string, args ...interface{}) {
	if Level(level.Load()) < LevelDebug {
		return
	}
	log.Printf("[debug] request_id=%s operation=%s "+format, append([]interface{}{l.requestID, operation}, args...)...)
}
