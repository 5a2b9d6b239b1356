// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logbuf collects timestamped progress lines in a bounded rolling
// buffer. The buffer feeds the web UI's log view and is purely
// observational; pipeline decisions never read from it.
package logbuf

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// maxEntries caps the rolling buffer; the oldest entry is evicted first.
const maxEntries = 500

// Logger mirrors progress lines to an io.Writer and keeps the most
// recent entries in memory. Safe for concurrent use.
type Logger struct {
	out io.Writer

	mu      sync.Mutex
	entries []string
}

// New returns a Logger writing through to out. A nil out discards the
// write-through and only the buffer is kept.
func New(out io.Writer) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{out: out}
}

// Log records one message, prefixed with the local wall-clock time in the
// buffered copy.
func (l *Logger) Log(message string) {
	fmt.Fprintln(l.out, message)

	entry := "[" + time.Now().Format("15:04:05") + "] " + message
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > maxEntries {
		l.entries = append(l.entries[:0], l.entries[1:]...)
	}
}

// Logf formats and records one message.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Lines returns a snapshot of the buffered entries, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
