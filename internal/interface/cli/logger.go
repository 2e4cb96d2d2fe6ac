package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/YoshitsuguKoike/specstatus/internal/app"
)

// LogLevel is the severity of a stderr line
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < LogLevelDebug || l > LogLevelError {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// Logger writes "LEVEL: message" lines at or above a minimum level.
// watch logs from the watcher and git goroutines, so every write holds mu.
type Logger struct {
	mu       sync.Mutex
	minLevel LogLevel
	out      io.Writer
}

func NewLogger(minLevel LogLevel, out io.Writer) *Logger {
	return &Logger{minLevel: minLevel, out: out}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minLevel
}

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LogLevelDebug, format, args) }
func (l *Logger) Info(format string, args ...interface{})  { l.logf(LogLevelInfo, format, args) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logf(LogLevelWarn, format, args) }
func (l *Logger) Error(format string, args ...interface{}) { l.logf(LogLevelError, format, args) }

func (l *Logger) logf(level LogLevel, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}
	fmt.Fprintf(l.out, "%s: %s\n", level, fmt.Sprintf(format, args...))
}

// LogLevelFromString parses a stderr_level value. Unknown values mean warn.
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "error":
		return LogLevelError
	default:
		return LogLevelWarn
	}
}

var _ app.Logger = (*Logger)(nil)
