// Package log routes operator-facing messages. Warnings always print;
// diagnostics print only in verbose runs. Library packages return
// warnings as values and leave printing to the command layer.
package log

import (
	"fmt"
	"io"
)

// Logger writes messages to the configured writer (typically stderr).
type Logger struct {
	Verbose bool
	W       io.Writer
}

// Printf writes a formatted diagnostic when Verbose is true.
// It is a no-op otherwise.
func (l *Logger) Printf(format string, args ...any) {
	if !l.Verbose {
		return
	}
	_, _ = fmt.Fprintf(l.W, format+"\n", args...)
}

// Warnf writes a warning regardless of the verbose setting. Warnings
// never change the exit code.
func (l *Logger) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(l.W, "WARNING: "+format+"\n", args...)
}

// WarnAll emits one warning line per message.
func (l *Logger) WarnAll(msgs []string) {
	for _, m := range msgs {
		l.Warnf("%s", m)
	}
}
