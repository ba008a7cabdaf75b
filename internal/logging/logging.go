// Package logging builds the process logger. Diagnostics go to stderr so
// that passthrough commands keep stdout to themselves.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level. Unknown level names
// fall back to warn.
func New(w io.Writer, prefix, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  lvl,
	})
}

// Discard returns a logger that drops everything. Tests and library callers
// that do not care about diagnostics use it.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
