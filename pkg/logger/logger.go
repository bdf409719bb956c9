package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents the logging level
type Level int

const (
	// LevelError shows only error messages
	LevelError Level = iota
	// LevelWarn shows warnings and errors
	LevelWarn
	// LevelInfo shows informational messages, warnings, and errors (default)
	LevelInfo
	// LevelDebug shows everything, including raw protocol traffic
	LevelDebug
)

// Logger provides leveled logging with optional key=value fields
type Logger struct {
	level  *Level
	fields string
	out    *log.Logger
}

var defaultLogger = New(LevelInfo)

// New creates a logger writing to stderr with the specified level
func New(level Level) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer, level Level) *Logger {
	lvl := level
	return &Logger{
		level: &lvl,
		out:   log.New(w, "", log.LstdFlags),
	}
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger
}

// SetLevel sets the logging level for the default logger
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// GetLevel returns the current logging level of the default logger
func GetLevel() Level {
	return defaultLogger.GetLevel()
}

// SetLevel sets the logging level. Child loggers share the level of their parent.
func (l *Logger) SetLevel(level Level) {
	*l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() Level {
	return *l.level
}

// With returns a child logger that prefixes every message with key=value
func (l *Logger) With(key string, value interface{}) *Logger {
	field := fmt.Sprintf("%s=%v", key, value)
	if l.fields != "" {
		field = l.fields + " " + field
	}
	return &Logger{
		level:  l.level,
		fields: field,
		out:    l.out,
	}
}

// ParseLevel parses a string level name and returns the corresponding Level
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s (valid levels: error, warn, info, debug)", levelStr)
	}
}

// String returns the string representation of a level
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	if *l.level < level {
		return
	}
	prefix := "[" + level.String() + "] "
	if l.fields != "" {
		prefix += l.fields + " "
	}
	l.out.Printf(prefix+format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.logf(LevelError, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logf(LevelWarn, format, v...)
}

// Info logs an informational message
func (l *Logger) Info(format string, v ...interface{}) {
	l.logf(LevelInfo, format, v...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logf(LevelDebug, format, v...)
}

// Package-level convenience functions that use the default logger

// Error logs an error message using the default logger
func Error(format string, v ...interface{}) {
	defaultLogger.Error(format, v...)
}

// Warn logs a warning message using the default logger
func Warn(format string, v ...interface{}) {
	defaultLogger.Warn(format, v...)
}

// Info logs an informational message using the default logger
func Info(format string, v ...interface{}) {
	defaultLogger.Info(format, v...)
}

// Debug logs a debug message using the default logger
func Debug(format string, v ...interface{}) {
	defaultLogger.Debug(format, v...)
}
