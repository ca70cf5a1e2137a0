// Logging
//
// The reactor logs through the Logger interface, which any component
// wired up with WithLogger must satisfy. NewStdLogger wraps the standard
// library's log package for zero-dependency use; logiface_bridge.go
// bridges to a github.com/joeycumines/logiface typed logger for
// structured output, following the same external-integration design as
// the teacher's package-level logging facade.
package tick

import (
	"log"
	"os"
)

// Logger is the minimal structured-logging surface the reactor needs.
// Debug/Info record diagnostics; Warn records recoverable anomalies
// (deregistration errors, stale messages); Error records conditions that
// caused an endpoint to be removed.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// noopLogger discards everything; it is the default when no Logger is
// configured.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

// LogLevel is the minimum severity a StdLogger will emit.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StdLogger is a Logger backed by the standard library's log package,
// gated by a minimum LogLevel.
type StdLogger struct {
	level LogLevel
	l     *log.Logger
}

// NewStdLogger creates a StdLogger writing to os.Stderr at minimum
// severity level.
func NewStdLogger(level LogLevel) *StdLogger {
	return &StdLogger{level: level, l: log.New(os.Stderr, "tick: ", log.LstdFlags)}
}

func (s *StdLogger) emit(level LogLevel, format string, args ...any) {
	if level < s.level {
		return
	}
	s.l.Printf(level.String()+" "+format, args...)
}

func (s *StdLogger) Debugf(format string, args ...any) { s.emit(LevelDebug, format, args...) }
func (s *StdLogger) Infof(format string, args ...any)  { s.emit(LevelInfo, format, args...) }
func (s *StdLogger) Warnf(format string, args ...any)  { s.emit(LevelWarn, format, args...) }
func (s *StdLogger) Errorf(format string, args ...any) { s.emit(LevelError, format, args...) }
