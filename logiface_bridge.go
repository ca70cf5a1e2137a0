package tick

import "github.com/joeycumines/logiface"

// LogifaceLogger adapts a github.com/joeycumines/logiface generic
// *logiface.Logger[logiface.Event] to the tick Logger interface, the way
// a typed logiface.Logger's .Logger() method hands back the generic
// Event-typed logger for integration with a non-generic consumer.
type LogifaceLogger struct {
	L *logiface.Logger[logiface.Event]
}

func (l LogifaceLogger) Debugf(format string, args ...any) {
	l.L.Debug().Logf(format, args...)
}

func (l LogifaceLogger) Infof(format string, args ...any) {
	l.L.Info().Logf(format, args...)
}

func (l LogifaceLogger) Warnf(format string, args ...any) {
	l.L.Warning().Logf(format, args...)
}

func (l LogifaceLogger) Errorf(format string, args ...any) {
	l.L.Err().Logf(format, args...)
}
