// Package history holds the append-only workflow log and the pattern
// matching used by deadline guards.
package history

import (
	"sync"

	"github.com/petrijr/hookflow/internal/clone"
	"github.com/petrijr/hookflow/pkg/api"
)

// Log is an append-only, goroutine-safe list of history entries. Every
// Append wakes up goroutines waiting on Changed.
type Log struct {
	mu      sync.Mutex
	entries []api.HistoryEntry
	changed chan struct{}
}

// New returns an empty Log.
func New() *Log {
	return &Log{changed: make(chan struct{})}
}

// Append adds an entry and returns its 0-based sequence number.
func (l *Log) Append(entry api.HistoryEntry) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	close(l.changed)
	l.changed = make(chan struct{})
	return len(l.entries) - 1
}

// Changed returns a channel closed by the next Append.
func (l *Log) Changed() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changed
}

// Snapshot returns a copy of the entries. Args slices are copied too, so
// callers cannot alter the log through the result.
func (l *Log) Snapshot() []api.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]api.HistoryEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = api.HistoryEntry{Type: e.Type, Args: append([]any(nil), e.Args...)}
	}
	return out
}

// Contains reports whether any entry matches pattern.
func (l *Log) Contains(pattern api.HistoryEntry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if Matches(e, pattern) {
			return true
		}
	}
	return false
}

// Matches reports whether entry has the pattern's type and its args start
// with the pattern's args. Args are compared by identity: equal scalars
// match, containers only match themselves.
func Matches(entry, pattern api.HistoryEntry) bool {
	if entry.Type != pattern.Type {
		return false
	}
	if len(pattern.Args) > len(entry.Args) {
		return false
	}
	for i, want := range pattern.Args {
		if !clone.Same(entry.Args[i], want) {
			return false
		}
	}
	return true
}
