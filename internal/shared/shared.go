// Package shared holds the configuration, errors and logging used across sptdl.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger returns a [log.Logger] writing to w with timestamps and caller reporting.
//
// A nil w logs to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "sptdl",
		ReportTimestamp: true,
		ReportCaller:    true,
	})
}

// WithLogger returns a child of l that adds kv to every entry.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// RunLogger tags l with a fresh run id and returns both.
func RunLogger(l *log.Logger) (*log.Logger, string) {
	id := GenerateID()
	return WithLogger(l, "run", id), id
}

// SetVerbose switches l between debug and info level.
func SetVerbose(l *log.Logger, verbose bool) {
	if verbose {
		l.SetLevel(log.DebugLevel)
		return
	}
	l.SetLevel(log.InfoLevel)
}

// GenerateID returns a random v4 UUID.
func GenerateID() string {
	return uuid.New().String()
}
