package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger provides leveled logging to the operator-visible diagnostic stream.
// The host job system collects stderr into the job's error log, so that is
// the default destination.
type Logger struct {
	level   LogLevel
	verbose bool
	out     io.Writer
	mu      sync.Mutex
}

// NewLogger creates a new logger with specified level and verbose mode
func NewLogger(level string, verbose bool) *Logger {
	return NewLoggerWithWriter(level, verbose, os.Stderr)
}

// NewLoggerWithWriter creates a logger that writes to w
func NewLoggerWithWriter(level string, verbose bool, w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{
		level:   parseLogLevel(level),
		verbose: verbose,
		out:     w,
	}
}

// Debug logs debug information (only in debug mode)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.log("DEBUG", fmt.Sprintf(format, args...))
	}
}

// Info logs informational messages (only in verbose mode)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.verbose && l.level <= LevelInfo {
		l.log("INFO", fmt.Sprintf(format, args...))
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.log("WARN", fmt.Sprintf(format, args...))
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level <= LevelError {
		l.log("ERROR", fmt.Sprintf(format, args...))
	}
}

// ProgressAlways logs critical progress information that should always be shown
func (l *Logger) ProgressAlways(emoji, format string, args ...interface{}) {
	l.write(fmt.Sprintf("%s %s\n", emoji, fmt.Sprintf(format, args...)))
}

// Progress logs detailed progress information (only in verbose mode)
func (l *Logger) Progress(emoji, format string, args ...interface{}) {
	if l.verbose {
		l.write(fmt.Sprintf("%s %s\n", emoji, fmt.Sprintf(format, args...)))
	}
}

// Section writes a titled block verbatim, regardless of level. Used to dump
// engine logs so they survive in the job's error log for post-mortem work.
func (l *Logger) Section(title, body string) {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 49))
	b.WriteString("\n")
	b.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	l.write(b.String())
}

// log outputs formatted log messages
func (l *Logger) log(level, message string) {
	l.write(fmt.Sprintf("[%s] %s\n", level, message))
}

func (l *Logger) write(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, s)
}

// parseLogLevel converts string level to LogLevel
func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// DefaultLogger returns a default logger instance
func DefaultLogger() *Logger {
	return NewLogger("info", false)
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLoggerWithWriter("error", false, io.Discard)
}
