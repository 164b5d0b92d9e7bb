package api

import "time"

// HistoryType identifies a workflow history entry.
type HistoryType string

const (
	HistoryTrigger       HistoryType = "trigger"
	HistoryCancel        HistoryType = "cancel"
	HistoryOnCancel      HistoryType = "onCancel"
	HistoryAddSideEffect HistoryType = "addSideeffect"
	HistoryAfter         HistoryType = "after"
	HistoryView          HistoryType = "view"
)

// HistoryEntry is one record of the append-only workflow log. The same shape
// doubles as the pattern passed to Workflow.After: a pattern matches an
// entry with the same Type whose Args start with the pattern's Args.
type HistoryEntry struct {
	Type HistoryType
	Args []any
}

// Entry is shorthand for building a HistoryEntry.
func Entry(typ HistoryType, args ...any) HistoryEntry {
	return HistoryEntry{Type: typ, Args: args}
}

// TriggerOf returns the pattern matching any trigger of activity, whatever
// its payload.
func TriggerOf(activity string) HistoryEntry {
	return HistoryEntry{Type: HistoryTrigger, Args: []any{activity}}
}

// HistoryRecord is a history entry as seen by a HistoryStore. Args are
// rendered into Detail by the store's codec; functions are replaced by a
// placeholder.
type HistoryRecord struct {
	WorkflowID string
	Seq        int
	At         time.Time
	Type       HistoryType
	Detail     string
}
