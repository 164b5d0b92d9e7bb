package persistence

import (
	"context"

	"github.com/petrijr/hookflow/pkg/api"
)

// HistoryStore mirrors workflow history for audit and debugging. The engine
// keeps its own in-memory log as the source of truth and never reads a
// workflow back from a store.
type HistoryStore interface {
	AppendEntry(ctx context.Context, rec api.HistoryRecord) error
	ListEntries(ctx context.Context, workflowID string) ([]api.HistoryRecord, error)
}

// NoopHistoryStore discards all entries.
type NoopHistoryStore struct{}

func (NoopHistoryStore) AppendEntry(ctx context.Context, rec api.HistoryRecord) error { return nil }
func (NoopHistoryStore) ListEntries(ctx context.Context, workflowID string) ([]api.HistoryRecord, error) {
	return nil, nil
}

// Record converts a history entry into a store record, rendering its args
// with EncodeArgs.
func Record(workflowID string, seq int, entry api.HistoryEntry) (api.HistoryRecord, error) {
	detail, err := EncodeArgs(entry.Args)
	if err != nil {
		return api.HistoryRecord{}, err
	}
	return api.HistoryRecord{
		WorkflowID: workflowID,
		Seq:        seq,
		Type:       entry.Type,
		Detail:     detail,
	}, nil
}
