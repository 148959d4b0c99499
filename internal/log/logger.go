// Package log provides the leveled logger shared by all commands.
package log

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Logger writes progress and diagnostic messages. Debug messages are only
// emitted when the logger is verbose. Output goes to the configured writer
// (typically stderr).
type Logger struct {
	zl zerolog.Logger
}

// New returns a Logger writing human-readable lines to w.
func New(w io.Writer, verbose bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return &Logger{zl: zerolog.New(out).Level(level)}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Printf writes a formatted debug message. It is a no-op unless the
// logger is verbose.
func (l *Logger) Printf(format string, args ...any) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Debug starts a debug-level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zl.Debug()
}

// Info starts an info-level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zl.Info()
}

// Warn starts a warn-level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zl.Warn()
}
