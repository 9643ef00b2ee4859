package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level represents logging severity
type Level int

const (
	// LevelDebug for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo for general informational messages
	LevelInfo
	// LevelWarn for warning messages
	LevelWarn
	// LevelError for error messages
	LevelError
	// LevelNone disables all logging
	LevelNone
)

// Logger is the leveled logging interface used throughout the invocation core.
// The decorators log cache hits at debug level and retries at warning level.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// StdLogger implements Logger using Go's standard log package
type StdLogger struct {
	logger *log.Logger
	level  Level
}

// NewStdLogger creates a logger writing to stderr at the given level
func NewStdLogger(level Level) *StdLogger {
	return &StdLogger{
		logger: log.New(os.Stderr, "[llminvoke] ", log.LstdFlags),
		level:  level,
	}
}

// NewWriterLogger creates a logger with a custom output destination
func NewWriterLogger(out io.Writer, level Level) *StdLogger {
	return &StdLogger{
		logger: log.New(out, "[llminvoke] ", log.LstdFlags),
		level:  level,
	}
}

// Debug logs debug messages
func (l *StdLogger) Debug(format string, v ...any) {
	if l.level <= LevelDebug {
		l.logger.Printf("[DEBUG] "+format, v...)
	}
}

// Info logs informational messages
func (l *StdLogger) Info(format string, v ...any) {
	if l.level <= LevelInfo {
		l.logger.Printf("[INFO] "+format, v...)
	}
}

// Warn logs warning messages
func (l *StdLogger) Warn(format string, v ...any) {
	if l.level <= LevelWarn {
		l.logger.Printf("[WARN] "+format, v...)
	}
}

// Error logs error messages
func (l *StdLogger) Error(format string, v ...any) {
	if l.level <= LevelError {
		l.logger.Printf("[ERROR] "+format, v...)
	}
}

// NopLogger is a logger that discards everything
type NopLogger struct{}

// Debug does nothing
func (l *NopLogger) Debug(format string, v ...any) {}

// Info does nothing
func (l *NopLogger) Info(format string, v ...any) {}

// Warn does nothing
func (l *NopLogger) Warn(format string, v ...any) {}

// Error does nothing
func (l *NopLogger) Error(format string, v ...any) {}

// String returns the string representation of Level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// Package-level logger (default is StdLogger at info level)
var defaultLogger Logger = NewStdLogger(LevelInfo)

// SetDefault replaces the package-level logger.
// Components fall back to this logger when none is configured explicitly.
func SetDefault(logger Logger) {
	defaultLogger = logger
}

// Default returns the current package-level logger
func Default() Logger {
	return defaultLogger
}
